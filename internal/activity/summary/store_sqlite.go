package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"demogate/internal/activity/models"
	"demogate/internal/sentinel"
)

type summaryRow struct {
	AccountID         string `gorm:"primaryKey"`
	Name              string
	TotalEvents       int64
	TotalSessions     int64
	TotalTimeSeconds  int64
	LastActivity      time.Time
	TrackingActive    bool
	CreatedAt         time.Time
	TrackingPausedAt  *time.Time
	TrackingResumedAt *time.Time
}

func (summaryRow) TableName() string { return "activity_summaries" }

// visitedRow is the set backing demos_visited. The composite primary key
// plus insert-or-ignore gives idempotent union semantics.
type visitedRow struct {
	AccountID string `gorm:"primaryKey"`
	DemoID    string `gorm:"primaryKey"`
}

func (visitedRow) TableName() string { return "activity_summary_demos" }

// counterColumns are the fields incrementable in place with a relative
// UPDATE expression.
var counterColumns = map[string]string{
	FieldTotalEvents:      "total_events",
	FieldTotalSessions:    "total_sessions",
	FieldTotalTimeSeconds: "total_time_seconds",
}

// SQLiteStore persists summaries via gorm. Counter updates use relative
// SQL expressions so concurrent appliers never overwrite each other.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore constructs a SQLite-backed summary store and migrates its
// tables.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&summaryRow{}, &visitedRow{}); err != nil {
		return nil, fmt.Errorf("migrate activity summaries: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, accountID, name string, now time.Time) error {
	row := summaryRow{
		AccountID:      accountID,
		Name:           name,
		TrackingActive: true,
		CreatedAt:      now,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, accountID string) (*models.Summary, error) {
	var row summaryRow
	err := s.db.WithContext(ctx).First(&row, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("summary for %q: %w", accountID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}

	var visited []visitedRow
	err = s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("demo_id").
		Find(&visited).Error
	if err != nil {
		return nil, fmt.Errorf("load visited demos: %w", err)
	}

	demos := make([]string, 0, len(visited))
	for _, v := range visited {
		demos = append(demos, v.DemoID)
	}

	return &models.Summary{
		AccountID:         row.AccountID,
		Name:              row.Name,
		TotalEvents:       row.TotalEvents,
		TotalSessions:     row.TotalSessions,
		TotalTimeSeconds:  row.TotalTimeSeconds,
		DemosVisited:      demos,
		LastActivity:      row.LastActivity,
		TrackingActive:    row.TrackingActive,
		CreatedAt:         row.CreatedAt,
		TrackingPausedAt:  row.TrackingPausedAt,
		TrackingResumedAt: row.TrackingResumedAt,
	}, nil
}

func (s *SQLiteStore) Apply(ctx context.Context, accountID string, update *AtomicUpdate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := make(map[string]any)
		var unions []visitedRow

		for _, o := range update.ops {
			switch o.kind {
			case opIncrement:
				col, ok := counterColumns[o.field]
				if !ok {
					return fmt.Errorf("increment on unknown field %q", o.field)
				}
				columns[col] = gorm.Expr(col+" + ?", o.delta)
			case opUnion:
				if o.field != FieldDemosVisited {
					return fmt.Errorf("union on unknown field %q", o.field)
				}
				unions = append(unions, visitedRow{AccountID: accountID, DemoID: o.value})
			case opSetTime:
				if o.field != FieldLastActivity {
					return fmt.Errorf("set-time on unknown field %q", o.field)
				}
				columns["last_activity"] = o.at
			}
		}

		if len(columns) > 0 {
			res := tx.Model(&summaryRow{}).
				Where("account_id = ?", accountID).
				Updates(columns)
			if res.Error != nil {
				return fmt.Errorf("apply summary update: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("summary for %q: %w", accountID, sentinel.ErrNotFound)
			}
		} else if err := s.exists(tx, accountID); err != nil {
			return err
		}

		if len(unions) > 0 {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&unions).Error
			if err != nil {
				return fmt.Errorf("apply visited union: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) SetTracking(ctx context.Context, accountID string, active bool, now time.Time) error {
	columns := map[string]any{"tracking_active": active}
	if active {
		columns["tracking_resumed_at"] = now
	} else {
		columns["tracking_paused_at"] = now
	}

	res := s.db.WithContext(ctx).Model(&summaryRow{}).
		Where("account_id = ?", accountID).
		Updates(columns)
	if res.Error != nil {
		return fmt.Errorf("set tracking state: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("summary for %q: %w", accountID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) exists(tx *gorm.DB, accountID string) error {
	var count int64
	err := tx.Model(&summaryRow{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check summary: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("summary for %q: %w", accountID, sentinel.ErrNotFound)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
