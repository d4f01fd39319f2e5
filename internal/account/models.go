package account

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// Account is the durable record for a named principal. The capability set
// (Access) and the active flag on this record are the authoritative source
// for authorization decisions; token snapshots are advisory.
type Account struct {
	ID            string
	Name          string
	PasswordHash  string
	Access        []string
	IsAdmin       bool
	QuickAccess   bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeactivatedAt *time.Time
	ReactivatedAt *time.Time
	LastLogin     *time.Time
}

var idCleaner = regexp.MustCompile(`[^a-z0-9-]+`)

// NormalizeID canonicalizes an account or demo identifier to the
// lowercase-hyphenated form used as the storage key.
func NormalizeID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	id = strings.ReplaceAll(id, " ", "-")
	id = idCleaner.ReplaceAllString(id, "")
	return strings.Trim(id, "-")
}

// HasAccess reports whether the capability set contains the demo.
func (a *Account) HasAccess(demoID string) bool {
	return slices.Contains(a.Access, demoID)
}

// Subject returns the account's identifier for authorization checks.
func (a *Account) Subject() string { return a.ID }

// Active reports whether the account may currently act.
func (a *Account) Active() bool { return a.IsActive }

// Clone returns a deep copy so callers can never mutate store-owned state.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Access = slices.Clone(a.Access)
	if a.DeactivatedAt != nil {
		t := *a.DeactivatedAt
		cp.DeactivatedAt = &t
	}
	if a.ReactivatedAt != nil {
		t := *a.ReactivatedAt
		cp.ReactivatedAt = &t
	}
	if a.LastLogin != nil {
		t := *a.LastLogin
		cp.LastLogin = &t
	}
	return &cp
}

// View is the transport-safe projection of an account. It never carries
// the credential hash.
type View struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Access        []string   `json:"access"`
	IsAdmin       bool       `json:"is_admin"`
	QuickAccess   bool       `json:"quick_access"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	ReactivatedAt *time.Time `json:"reactivated_at,omitempty"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

// ToView maps an account to its transport projection.
func (a *Account) ToView() View {
	return View{
		ID:            a.ID,
		Name:          a.Name,
		Access:        slices.Clone(a.Access),
		IsAdmin:       a.IsAdmin,
		QuickAccess:   a.QuickAccess,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		DeactivatedAt: a.DeactivatedAt,
		ReactivatedAt: a.ReactivatedAt,
		LastLogin:     a.LastLogin,
	}
}

// Updates carries a partial field update; nil pointers leave the stored
// value untouched. Lifecycle timestamps are maintained by the store when
// IsActive transitions.
type Updates struct {
	Name         *string
	PasswordHash *string
	Access       *[]string
	IsAdmin      *bool
	QuickAccess  *bool
	IsActive     *bool
}

// Empty reports whether the update would change nothing.
func (u Updates) Empty() bool {
	return u.Name == nil && u.PasswordHash == nil && u.Access == nil &&
		u.IsAdmin == nil && u.QuickAccess == nil && u.IsActive == nil
}
