package llm

import (
	"context"
	"errors"
	"testing"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain json",
			raw:  `{"days": []}`,
			want: `{"days": []}`,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"days\": []}\n```",
			want: `{"days": []}`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"days\": []}\n```",
			want: `{"days": []}`,
		},
		{
			name: "surrounding whitespace",
			raw:  "  \n{\"recommendations\": []}\n  ",
			want: `{"recommendations": []}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanResponse(tt.raw); got != tt.want {
				t.Errorf("CleanResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantNil bool
		wantErr bool
	}{
		{name: "disabled", cfg: Config{}, wantNil: true},
		{name: "mock", cfg: Config{Provider: "mock"}},
		{name: "openai without key", cfg: Config{Provider: "openai"}, wantErr: true},
		{name: "openai with key", cfg: Config{Provider: "openai", APIKey: "test-key"}},
		{name: "unknown", cfg: Config{Provider: "bard"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (p == nil) != tt.wantNil {
				t.Errorf("NewProvider() = %v, wantNil %v", p, tt.wantNil)
			}
		})
	}
}

func TestMockProviderRecordsCalls(t *testing.T) {
	m := NewMockProvider()
	m.Response = "ok"

	got, err := m.Complete(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q, want %q", got, "ok")
	}

	m.Err = errors.New("quota exceeded")
	if _, err := m.Complete(context.Background(), "sys", "usr"); err == nil {
		t.Error("Complete() expected error after Err set")
	}

	calls := m.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", len(calls))
	}
	if calls[0].System != "sys" || calls[0].User != "usr" {
		t.Errorf("unexpected recorded call: %+v", calls[0])
	}
}
