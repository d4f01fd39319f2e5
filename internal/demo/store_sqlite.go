package demo

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

// demoRow is the persistence shape for SQLite. Tag lists are stored as
// JSON arrays in text columns.
type demoRow struct {
	ID            string `gorm:"primaryKey"`
	Title         string
	Description   string
	Icon          string
	Industry      string
	Path          string
	TagsJSON      string `gorm:"column:tags;type:text"`
	Keywords      string
	TitleES       string `gorm:"column:title_es"`
	DescriptionES string `gorm:"column:description_es"`
	TagsESJSON    string `gorm:"column:tags_es;type:text"`
	SortOrder     int    `gorm:"index"`
	IsActive      bool   `gorm:"index"`
	IsExternal    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (demoRow) TableName() string { return "demos" }

// SQLiteStore persists catalog entries via gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore constructs a SQLite-backed catalog and migrates its table.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&demoRow{}); err != nil {
		return nil, fmt.Errorf("migrate demos: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func toRow(d *Demo) (*demoRow, error) {
	tags, err := json.Marshal(d.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	tagsES, err := json.Marshal(d.TagsES)
	if err != nil {
		return nil, fmt.Errorf("encode tags_es: %w", err)
	}
	return &demoRow{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Icon:          d.Icon,
		Industry:      d.Industry,
		Path:          d.Path,
		TagsJSON:      string(tags),
		Keywords:      d.Keywords,
		TitleES:       d.TitleES,
		DescriptionES: d.DescriptionES,
		TagsESJSON:    string(tagsES),
		SortOrder:     d.SortOrder,
		IsActive:      d.IsActive,
		IsExternal:    d.IsExternal,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

func fromRow(r *demoRow) (*Demo, error) {
	var tags, tagsES []string
	if r.TagsJSON != "" {
		if err := json.Unmarshal([]byte(r.TagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if r.TagsESJSON != "" {
		if err := json.Unmarshal([]byte(r.TagsESJSON), &tagsES); err != nil {
			return nil, fmt.Errorf("decode tags_es: %w", err)
		}
	}
	return &Demo{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Icon:          r.Icon,
		Industry:      r.Industry,
		Path:          r.Path,
		Tags:          tags,
		Keywords:      r.Keywords,
		TitleES:       r.TitleES,
		DescriptionES: r.DescriptionES,
		TagsES:        tagsES,
		SortOrder:     r.SortOrder,
		IsActive:      r.IsActive,
		IsExternal:    r.IsExternal,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Demo, error) {
	var row demoRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("demo %q: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get demo: %w", err)
	}
	return fromRow(&row)
}

func (s *SQLiteStore) Create(ctx context.Context, d *Demo) error {
	row, err := toRow(d)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return fmt.Errorf("create demo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("demo %q: %w", d.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, updates Updates) (*Demo, error) {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if updates.Title != nil {
		fields["title"] = *updates.Title
	}
	if updates.Description != nil {
		fields["description"] = *updates.Description
	}
	if updates.Icon != nil {
		fields["icon"] = *updates.Icon
	}
	if updates.Industry != nil {
		fields["industry"] = *updates.Industry
	}
	if updates.Path != nil {
		fields["path"] = *updates.Path
	}
	if updates.Tags != nil {
		tags, err := json.Marshal(*updates.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
		fields["tags"] = string(tags)
	}
	if updates.Keywords != nil {
		fields["keywords"] = *updates.Keywords
	}
	if updates.TitleES != nil {
		fields["title_es"] = *updates.TitleES
	}
	if updates.DescriptionES != nil {
		fields["description_es"] = *updates.DescriptionES
	}
	if updates.TagsES != nil {
		tagsES, err := json.Marshal(*updates.TagsES)
		if err != nil {
			return nil, fmt.Errorf("encode tags_es: %w", err)
		}
		fields["tags_es"] = string(tagsES)
	}
	if updates.SortOrder != nil {
		fields["sort_order"] = *updates.SortOrder
	}
	if updates.IsActive != nil {
		fields["is_active"] = *updates.IsActive
	}
	if updates.IsExternal != nil {
		fields["is_external"] = *updates.IsExternal
	}

	res := s.db.WithContext(ctx).Model(&demoRow{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update demo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("demo %q: %w", id, sentinel.ErrNotFound)
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) List(ctx context.Context, includeInactive bool) ([]*Demo, error) {
	q := s.db.WithContext(ctx).Model(&demoRow{}).Order("sort_order").Order("title")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var rows []demoRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list demos: %w", err)
	}
	out := make([]*Demo, 0, len(rows))
	for i := range rows {
		d, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

var _ Store = (*SQLiteStore)(nil)
