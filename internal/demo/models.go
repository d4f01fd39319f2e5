// Package demo owns the demo catalog: the browsable entries that account
// capability sets refer to. Catalog entries are soft-deleted only, so a
// revoked demo keeps its identity in ledgers and capability history.
package demo

import (
	"slices"
	"time"
)

// Demo is one catalog entry. Spanish-language fields fall back to the
// English values when never set.
type Demo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Industry      string    `json:"industry"`
	Path          string    `json:"path"`
	Tags          []string  `json:"tags"`
	Keywords      string    `json:"keywords,omitempty"`
	TitleES       string    `json:"title_es"`
	DescriptionES string    `json:"description_es"`
	TagsES        []string  `json:"tags_es"`
	SortOrder     int       `json:"sort_order"`
	IsActive      bool      `json:"is_active"`
	IsExternal    bool      `json:"is_external"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can never mutate store-owned state.
func (d *Demo) Clone() *Demo {
	cp := *d
	cp.Tags = slices.Clone(d.Tags)
	cp.TagsES = slices.Clone(d.TagsES)
	return &cp
}

// Updates carries a partial field update; nil pointers leave the stored
// value untouched.
type Updates struct {
	Title         *string
	Description   *string
	Icon          *string
	Industry      *string
	Path          *string
	Tags          *[]string
	Keywords      *string
	TitleES       *string
	DescriptionES *string
	TagsES        *[]string
	SortOrder     *int
	IsActive      *bool
	IsExternal    *bool
}

// Empty reports whether the update would change nothing.
func (u Updates) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Icon == nil &&
		u.Industry == nil && u.Path == nil && u.Tags == nil &&
		u.Keywords == nil && u.TitleES == nil && u.DescriptionES == nil &&
		u.TagsES == nil && u.SortOrder == nil && u.IsActive == nil &&
		u.IsExternal == nil
}
