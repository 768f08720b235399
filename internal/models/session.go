package models

import "time"

// SessionStatus describes the state of the live Codex auth file.
type SessionStatus string

const (
	SessionReady   SessionStatus = "ready"
	SessionMissing SessionStatus = "missing"
	SessionInvalid SessionStatus = "invalid"
	SessionError   SessionStatus = "error"
)

// CurrentSessionSummary describes the auth file Codex is currently using.
// It is replaced wholesale on every refresh.
type CurrentSessionSummary struct {
	LastModifiedAt   *time.Time    `json:"last_modified_at,omitempty"`
	Status           SessionStatus `json:"status"`
	AuthMode         AuthMode      `json:"auth_mode,omitempty"`
	Email            string        `json:"email,omitempty"`
	PlanType         string        `json:"plan_type,omitempty"`
	AuthFilePath     string        `json:"auth_file_path"`
	SnapshotsDirPath string        `json:"snapshots_dir_path"`
	Message          string        `json:"message,omitempty"`
}

// IsReady reports whether the auth file was found and parsed.
func (s *CurrentSessionSummary) IsReady() bool {
	return s != nil && s.Status == SessionReady
}

// ProcessInfo is the result of the backend's Codex process check.
type ProcessInfo struct {
	PIDs      []int `json:"pids"`
	Count     int   `json:"count"`
	CanSwitch bool  `json:"can_switch"`
}

// OAuthLoginInfo is returned when an OAuth login or reconnect is started.
type OAuthLoginInfo struct {
	AuthURL      string `json:"auth_url"`
	CallbackPort int    `json:"callback_port"`
}
