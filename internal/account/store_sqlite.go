package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"demogate/internal/sentinel"
)

// accountRow is the persistence shape for SQLite. The capability set is
// stored as a JSON array in a text column.
type accountRow struct {
	ID            string `gorm:"primaryKey"`
	Name          string
	PasswordHash  string
	AccessJSON    string `gorm:"column:access;type:text"`
	IsAdmin       bool
	QuickAccess   bool
	IsActive      bool `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeactivatedAt *time.Time
	ReactivatedAt *time.Time
	LastLogin     *time.Time
}

func (accountRow) TableName() string { return "accounts" }

// SQLiteStore persists accounts via gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore constructs a SQLite-backed account store and runs the
// schema migration for its table.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&accountRow{}); err != nil {
		return nil, fmt.Errorf("migrate accounts: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func toRow(a *Account) (*accountRow, error) {
	access, err := json.Marshal(a.Access)
	if err != nil {
		return nil, fmt.Errorf("encode access set: %w", err)
	}
	return &accountRow{
		ID:            a.ID,
		Name:          a.Name,
		PasswordHash:  a.PasswordHash,
		AccessJSON:    string(access),
		IsAdmin:       a.IsAdmin,
		QuickAccess:   a.QuickAccess,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		DeactivatedAt: a.DeactivatedAt,
		ReactivatedAt: a.ReactivatedAt,
		LastLogin:     a.LastLogin,
	}, nil
}

func fromRow(r *accountRow) (*Account, error) {
	var access []string
	if r.AccessJSON != "" {
		if err := json.Unmarshal([]byte(r.AccessJSON), &access); err != nil {
			return nil, fmt.Errorf("decode access set: %w", err)
		}
	}
	return &Account{
		ID:            r.ID,
		Name:          r.Name,
		PasswordHash:  r.PasswordHash,
		Access:        access,
		IsAdmin:       r.IsAdmin,
		QuickAccess:   r.QuickAccess,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		DeactivatedAt: r.DeactivatedAt,
		ReactivatedAt: r.ReactivatedAt,
		LastLogin:     r.LastLogin,
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Account, error) {
	var row accountRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %q: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return fromRow(&row)
}

func (s *SQLiteStore) Create(ctx context.Context, acct *Account) error {
	row, err := toRow(acct)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return fmt.Errorf("create account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %q: %w", acct.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, updates Updates) (*Account, error) {
	now := time.Now().UTC()
	fields := map[string]any{"updated_at": now}
	if updates.Name != nil {
		fields["name"] = *updates.Name
	}
	if updates.PasswordHash != nil {
		fields["password_hash"] = *updates.PasswordHash
	}
	if updates.Access != nil {
		access, err := json.Marshal(*updates.Access)
		if err != nil {
			return nil, fmt.Errorf("encode access set: %w", err)
		}
		fields["access"] = string(access)
	}
	if updates.IsAdmin != nil {
		fields["is_admin"] = *updates.IsAdmin
	}
	if updates.QuickAccess != nil {
		fields["quick_access"] = *updates.QuickAccess
	}
	if updates.IsActive != nil {
		fields["is_active"] = *updates.IsActive
		if *updates.IsActive {
			fields["reactivated_at"] = now
		} else {
			fields["deactivated_at"] = now
		}
	}

	res := s.db.WithContext(ctx).Model(&accountRow{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("account %q: %w", id, sentinel.ErrNotFound)
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) List(ctx context.Context, includeInactive bool) ([]*Account, error) {
	q := s.db.WithContext(ctx).Model(&accountRow{}).Order("id")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var rows []accountRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]*Account, 0, len(rows))
	for i := range rows {
		acct, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, nil
}

func (s *SQLiteStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&accountRow{}).Where("id = ?", id).
		Update("last_login", at)
	if res.Error != nil {
		return fmt.Errorf("touch last login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %q: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
var _ Store = (*InMemoryStore)(nil)
