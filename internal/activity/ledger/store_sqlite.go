package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"demogate/internal/activity/models"
)

// eventRow is the persistence shape for SQLite. Payload maps are stored as
// JSON text; they are opaque to queries.
type eventRow struct {
	ID          string `gorm:"primaryKey"`
	AccountID   string `gorm:"index:idx_events_account_ts,priority:1"`
	EventType   string `gorm:"index"`
	Timestamp   time.Time `gorm:"index:idx_events_account_ts,priority:2"`
	SessionID   string `gorm:"index"`
	DemoID      string `gorm:"index"`
	PageURL     string
	PayloadJSON string `gorm:"column:payload;type:text"`
	IPAddress   string
	UserAgent   string
}

func (eventRow) TableName() string { return "activity_events" }

// SQLiteStore persists ledger events via gorm. A single INSERT per append
// gives the required all-or-nothing behavior.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore constructs a SQLite-backed ledger and migrates its table.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&eventRow{}); err != nil {
		return nil, fmt.Errorf("migrate activity events: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, event *models.Event) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	payload := ""
	if len(event.Payload) > 0 {
		raw, err := json.Marshal(event.Payload)
		if err != nil {
			return "", fmt.Errorf("encode event payload: %w", err)
		}
		payload = string(raw)
	}

	row := eventRow{
		ID:          id.String(),
		AccountID:   event.AccountID,
		EventType:   string(event.Type),
		Timestamp:   event.Timestamp,
		SessionID:   event.SessionID,
		DemoID:      event.DemoID,
		PageURL:     event.PageURL,
		PayloadJSON: payload,
		IPAddress:   event.IPAddress,
		UserAgent:   event.UserAgent,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("append event: %w", err)
	}
	return row.ID, nil
}

func (s *SQLiteStore) Query(ctx context.Context, accountID string, filter models.Filter, limit int) ([]*models.Event, error) {
	limit = ClampLimit(limit)

	q := s.db.WithContext(ctx).Model(&eventRow{}).
		Where("account_id = ?", accountID).
		Order("timestamp DESC").
		Limit(limit)
	if filter.Type != "" {
		q = q.Where("event_type = ?", string(filter.Type))
	}
	if filter.DemoID != "" {
		q = q.Where("demo_id = ?", filter.DemoID)
	}
	if filter.SessionID != "" {
		q = q.Where("session_id = ?", filter.SessionID)
	}
	if !filter.From.IsZero() {
		q = q.Where("timestamp >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("timestamp <= ?", filter.To)
	}

	var rows []eventRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	out := make([]*models.Event, 0, len(rows))
	for i := range rows {
		ev, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func fromRow(r *eventRow) (*models.Event, error) {
	var payload map[string]any
	if r.PayloadJSON != "" {
		if err := json.Unmarshal([]byte(r.PayloadJSON), &payload); err != nil {
			return nil, fmt.Errorf("decode event payload: %w", err)
		}
	}
	return &models.Event{
		ID:        r.ID,
		AccountID: r.AccountID,
		Type:      models.EventType(r.EventType),
		Timestamp: r.Timestamp,
		SessionID: r.SessionID,
		DemoID:    r.DemoID,
		PageURL:   r.PageURL,
		Payload:   payload,
		IPAddress: r.IPAddress,
		UserAgent: r.UserAgent,
	}, nil
}

var _ Store = (*SQLiteStore)(nil)
