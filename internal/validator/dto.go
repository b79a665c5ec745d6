package validator

// QuestionResultRequest is one answered question inside a test submission.
type QuestionResultRequest struct {
	Subject       string  `json:"subject" validate:"required,max=100"`
	Topic         string  `json:"topic" validate:"required,max=200"`
	QuestionID    string  `json:"question_id" validate:"required,max=50"`
	StudentAnswer string  `json:"student_answer" validate:"required,max=255"`
	CorrectAnswer string  `json:"correct_answer" validate:"required,max=255"`
	TimeTaken     float64 `json:"time_taken" validate:"min=0"` // seconds
}

// SubmitTestRequest is the submission payload for one completed mock test.
type SubmitTestRequest struct {
	Questions []QuestionResultRequest `json:"questions" validate:"required,min=1,dive"`
}
