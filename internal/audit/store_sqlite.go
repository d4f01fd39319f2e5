package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type entryRow struct {
	ID          string    `gorm:"primaryKey"`
	Action      string    `gorm:"index"`
	ActorID     string    `gorm:"index"`
	TargetID    string
	DetailsJSON string    `gorm:"column:details;type:text"`
	IPAddress   string
	UserAgent   string
	Timestamp   time.Time `gorm:"index"`
}

func (entryRow) TableName() string { return "audit_entries" }

// SQLiteStore persists trail entries via gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore constructs a SQLite-backed trail store and migrates its table.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&entryRow{}); err != nil {
		return nil, fmt.Errorf("migrate audit entries: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	details := ""
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		details = string(raw)
	}

	row := entryRow{
		ID:          entry.ID,
		Action:      string(entry.Action),
		ActorID:     entry.ActorID,
		TargetID:    entry.TargetID,
		DetailsJSON: details,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		Timestamp:   entry.Timestamp,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, filter Filter, limit int) ([]Entry, error) {
	limit = ClampLimit(limit)

	q := s.db.WithContext(ctx).Model(&entryRow{}).
		Order("timestamp DESC").
		Limit(limit)
	if filter.Action != "" {
		q = q.Where("action = ?", string(filter.Action))
	}
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if !filter.From.IsZero() {
		q = q.Where("timestamp >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("timestamp <= ?", filter.To)
	}

	var rows []entryRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		var details map[string]any
		if r.DetailsJSON != "" {
			if err := json.Unmarshal([]byte(r.DetailsJSON), &details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		out = append(out, Entry{
			ID:        r.ID,
			Action:    Action(r.Action),
			ActorID:   r.ActorID,
			TargetID:  r.TargetID,
			Details:   details,
			IPAddress: r.IPAddress,
			UserAgent: r.UserAgent,
			Timestamp: r.Timestamp,
		})
	}
	return out, nil
}

var _ Store = (*SQLiteStore)(nil)
