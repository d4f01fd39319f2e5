package models

import "time"

// EventType is the closed enumeration of activity events accepted by the
// tracking endpoints.
type EventType string

const (
	EventSessionStart        EventType = "session_start"
	EventSessionEnd          EventType = "session_end"
	EventPageView            EventType = "page_view"
	EventPageExit            EventType = "page_exit"
	EventButtonClick         EventType = "button_click"
	EventLinkClick           EventType = "link_click"
	EventChatOpened          EventType = "chat_opened"
	EventChatClosed          EventType = "chat_closed"
	EventChatMessageSent     EventType = "chat_message_sent"
	EventChatMessageReceived EventType = "chat_message_received"
	EventScrollDepth         EventType = "scroll_depth"
	EventDemoLaunched        EventType = "demo_launched"
	EventFormInteraction     EventType = "form_interaction"
	EventError               EventType = "error"
	EventCustom              EventType = "custom"
)

var validEventTypes = map[EventType]struct{}{
	EventSessionStart: {}, EventSessionEnd: {},
	EventPageView: {}, EventPageExit: {},
	EventButtonClick: {}, EventLinkClick: {},
	EventChatOpened: {}, EventChatClosed: {},
	EventChatMessageSent: {}, EventChatMessageReceived: {},
	EventScrollDepth: {}, EventDemoLaunched: {},
	EventFormInteraction: {}, EventError: {}, EventCustom: {},
}

// Valid reports whether t is a member of the closed enumeration.
func (t EventType) Valid() bool {
	_, ok := validEventTypes[t]
	return ok
}

// Event is one immutable entry in an account's activity ledger. The ID is
// assigned on append and is time-ordered.
type Event struct {
	ID        string         `json:"id"`
	AccountID string         `json:"account_id"`
	Type      EventType      `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id,omitempty"`
	DemoID    string         `json:"demo_id,omitempty"`
	PageURL   string         `json:"page_url,omitempty"`
	Payload   map[string]any `json:"data,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
}

// DurationSeconds extracts the payload's duration_seconds value, tolerating
// the numeric types JSON decoding produces. Returns 0 when absent or
// non-positive.
func (e *Event) DurationSeconds() int64 {
	v, ok := e.Payload["duration_seconds"]
	if !ok {
		return 0
	}
	var d int64
	switch n := v.(type) {
	case float64:
		d = int64(n)
	case int:
		d = int64(n)
	case int64:
		d = n
	default:
		return 0
	}
	if d < 0 {
		return 0
	}
	return d
}

// Filter narrows a ledger query. Zero values mean "no constraint".
type Filter struct {
	Type      EventType
	DemoID    string
	SessionID string
	From      time.Time
	To        time.Time
}

// Summary is the derived, eventually consistent rollup of one account's
// ledger. It lags the ledger after an absorbed aggregation failure and
// self-heals on later events.
type Summary struct {
	AccountID         string     `json:"account_id"`
	Name              string     `json:"name"`
	TotalEvents       int64      `json:"total_events"`
	TotalSessions     int64      `json:"total_sessions"`
	TotalTimeSeconds  int64      `json:"total_time_seconds"`
	DemosVisited      []string   `json:"demos_visited"`
	LastActivity      time.Time  `json:"last_activity"`
	TrackingActive    bool       `json:"is_tracking_active"`
	CreatedAt         time.Time  `json:"created_at"`
	TrackingPausedAt  *time.Time `json:"tracking_paused_at,omitempty"`
	TrackingResumedAt *time.Time `json:"tracking_resumed_at,omitempty"`
}
