// Package audit keeps the append-only trail of security-relevant actions.
// Writes are best-effort: a failed audit write never blocks the action it
// describes, it is logged and counted instead.
package audit

import "time"

// Action identifies what happened.
type Action string

const (
	ActionLoginSuccess       Action = "login_success"
	ActionLoginFailed        Action = "login_failed"
	ActionLogout             Action = "logout"
	ActionAccountCreated     Action = "account_created"
	ActionAccountUpdated     Action = "account_updated"
	ActionAccountDeactivated Action = "account_deactivated"
	ActionAccountReactivated Action = "account_reactivated"
	ActionDemoAccessChecked  Action = "demo_access_checked"
	ActionDemoCreated        Action = "demo_created"
	ActionDemoUpdated        Action = "demo_updated"
	ActionDemoDeleted        Action = "demo_deleted"
)

// Entry is one record in the trail. ActorID is who performed the action;
// TargetID is the account or demo acted upon, when distinct.
type Entry struct {
	ID        string         `json:"id"`
	Action    Action         `json:"action"`
	ActorID   string         `json:"actor_id"`
	TargetID  string         `json:"target_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Filter narrows a trail query. Zero values mean "no constraint".
type Filter struct {
	Action  Action
	ActorID string
	From    time.Time
	To      time.Time
}
