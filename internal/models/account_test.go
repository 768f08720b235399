package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAuthMode_Label(t *testing.T) {
	tests := []struct {
		mode AuthMode
		want string
	}{
		{AuthModeChatGPT, "ChatGPT"},
		{AuthModeAPIKey, "API key"},
		{AuthMode("other"), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.mode.Label(); got != tt.want {
			t.Errorf("%q.Label() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestAccount_Decode(t *testing.T) {
	raw := `{
		"id": "acc-1",
		"name": "Work",
		"email": "dev@example.com",
		"plan_type": "plus",
		"auth_mode": "chat_gpt",
		"is_active": true,
		"created_at": "2025-01-02T03:04:05Z",
		"last_used_at": null
	}`

	var acc Account
	if err := json.Unmarshal([]byte(raw), &acc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if acc.ID != "acc-1" || acc.Name != "Work" {
		t.Errorf("unexpected identity: %+v", acc)
	}
	if !acc.IsOAuth() {
		t.Error("IsOAuth() = false, want true")
	}
	if !acc.IsActive {
		t.Error("IsActive = false, want true")
	}
	want := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if !acc.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", acc.CreatedAt, want)
	}
	if acc.LastUsedAt != nil {
		t.Errorf("LastUsedAt = %v, want nil", acc.LastUsedAt)
	}
	if acc.DisplayPlan() != "PLUS" {
		t.Errorf("DisplayPlan() = %q, want PLUS", acc.DisplayPlan())
	}
}

func TestAccount_DisplayPlanUnknown(t *testing.T) {
	if got := (Account{}).DisplayPlan(); got != "-" {
		t.Errorf("DisplayPlan() = %q, want -", got)
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"alice@example.com", "a****@example.com"},
		{"a@example.com", "a@example.com"},
		{"verylongname@example.com", "v******@example.com"},
		{"not-an-email", "********"},
	}

	for _, tt := range tests {
		if got := MaskEmail(tt.in); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
