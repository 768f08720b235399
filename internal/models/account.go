// Package models defines data structures and domain types.
package models

import (
	"strings"
	"time"
)

// AuthMode identifies how an account's credentials were obtained.
type AuthMode string

const (
	// AuthModeChatGPT is an account added through the ChatGPT OAuth flow.
	AuthModeChatGPT AuthMode = "chat_gpt"
	// AuthModeAPIKey is an account imported from an auth file or API key.
	AuthModeAPIKey AuthMode = "api_key"
)

// Label returns a short human readable name for the auth mode.
func (m AuthMode) Label() string {
	switch m {
	case AuthModeChatGPT:
		return "ChatGPT"
	case AuthModeAPIKey:
		return "API key"
	default:
		return "Unknown"
	}
}

// Account is a stored Codex credential set as reported by the backend.
type Account struct {
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	PlanType   string     `json:"plan_type,omitempty"`
	AuthMode   AuthMode   `json:"auth_mode"`
	IsActive   bool       `json:"is_active"`
}

// IsOAuth reports whether the account can be reconnected through OAuth.
func (a Account) IsOAuth() bool {
	return a.AuthMode == AuthModeChatGPT
}

// DisplayPlan returns the plan type in upper case, or "-" when unknown.
func (a Account) DisplayPlan() string {
	if a.PlanType == "" {
		return "-"
	}
	return strings.ToUpper(a.PlanType)
}

// AccountWithUsage combines an account with its cached usage snapshot.
// Usage is nil when no snapshot is known for the account.
type AccountWithUsage struct {
	Usage *UsageSnapshot `json:"usage,omitempty"`
	Account
	UsageLoading bool `json:"usage_loading,omitempty"`
}

// MaskEmail hides the local part of an email address, keeping the first
// character and the domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return strings.Repeat("*", min(len(email), 8))
	}
	local := email[:at]
	return local[:1] + strings.Repeat("*", min(len(local)-1, 6)) + email[at:]
}
