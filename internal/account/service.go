package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"demogate/internal/access"
	"demogate/internal/audit"
	"demogate/internal/device"
	"demogate/internal/platform/metrics"
	"demogate/internal/platform/middleware"
	"demogate/internal/platform/tracing"
	"demogate/internal/sentinel"
	"demogate/internal/token"
	dErrors "demogate/pkg/domain-errors"
	"demogate/pkg/secrets"
)

// TokenIssuer is the slice of the token service the account service consumes.
type TokenIssuer interface {
	Issue(accountID, name string, access []string, isAdmin bool, ttl time.Duration) (string, error)
	Decode(raw string) (*token.Claims, error)
}

// ActivityTracker keeps the activity summary lifecycle in step with account
// lifecycle transitions. All calls are best-effort from this service's
// point of view.
type ActivityTracker interface {
	Initialize(ctx context.Context, accountID, name string) error
	PauseTracking(ctx context.Context, accountID string) error
	ResumeTracking(ctx context.Context, accountID string) error
}

// AuditRecorder captures trail entries without ever failing the caller.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service owns account lifecycle, credential checks, and session issuing.
type Service struct {
	store    Store
	tokens   TokenIssuer
	policy   *access.Policy
	activity ActivityTracker
	auditor  AuditRecorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   tracing.Tracer
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTracer sets the tracer for the service.
func WithTracer(t tracing.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the account service.
// Panics if a required dependency is nil - fail fast at startup. The audit
// recorder is required: lifecycle and credential events must leave a trail.
func NewService(
	store Store,
	tokens TokenIssuer,
	policy *access.Policy,
	activityTracker ActivityTracker,
	auditor AuditRecorder,
	opts ...Option,
) *Service {
	if store == nil {
		panic("account.NewService: store is required")
	}
	if tokens == nil {
		panic("account.NewService: token issuer is required")
	}
	if policy == nil {
		panic("account.NewService: access policy is required")
	}
	if activityTracker == nil {
		panic("account.NewService: activity tracker is required")
	}
	if auditor == nil {
		panic("account.NewService: audit recorder is required")
	}

	s := &Service{
		store:    store,
		tokens:   tokens,
		policy:   policy,
		activity: activityTracker,
		auditor:  auditor,
		tracer:   tracing.NewNoop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginRequest carries submitted credentials.
type LoginRequest struct {
	AccountID string `json:"user_id"`
	Password  string `json:"password"`
}

// Session is a successful login result.
type Session struct {
	Token   string `json:"token"`
	Account View   `json:"user"`
}

// Login verifies credentials against the live account record and issues a
// session token. Unknown accounts and wrong passwords produce the same
// error code so the response never reveals which accounts exist.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanLogin)
	var spanErr error
	defer func() { span.End(spanErr) }()

	accountID := NormalizeID(req.AccountID)
	if accountID == "" || req.Password == "" {
		spanErr = dErrors.New(dErrors.CodeMalformedPayload, "user_id and password are required")
		return nil, spanErr
	}
	span.SetAttributes(tracing.String(tracing.AttrAccountID, accountID))

	acct, err := s.store.Get(ctx, accountID)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.loginFailed(ctx, accountID, "user_not_found")
		spanErr = dErrors.New(dErrors.CodeInvalidCredentials, "invalid credentials")
		return nil, spanErr
	}
	if err != nil {
		spanErr = dErrors.Wrap(err, dErrors.CodePersistence, "load account")
		return nil, spanErr
	}

	if !acct.IsActive {
		s.loginFailed(ctx, accountID, "account_disabled")
		spanErr = dErrors.New(dErrors.CodeAccountInactive, "account is disabled")
		return nil, spanErr
	}

	if err := secrets.VerifyPassword(req.Password, acct.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidCredentials) {
			s.loginFailed(ctx, accountID, "invalid_password")
		}
		spanErr = err
		return nil, err
	}

	signed, err := s.tokens.Issue(acct.ID, acct.Name, acct.Access, acct.IsAdmin, 0)
	if err != nil {
		spanErr = err
		return nil, err
	}

	if err := s.store.TouchLastLogin(ctx, acct.ID, s.now().UTC()); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "account_id", acct.ID, "error", err)
	}

	s.auditor.Record(ctx, s.entry(ctx, audit.ActionLoginSuccess, acct.ID, "", map[string]any{
		"device": device.Describe(middleware.UserAgent(ctx)),
	}))
	if s.metrics != nil {
		s.metrics.IncrementLogins()
	}
	return &Session{Token: signed, Account: acct.ToView()}, nil
}

func (s *Service) loginFailed(ctx context.Context, accountID, reason string) {
	s.auditor.Record(ctx, s.entry(ctx, audit.ActionLoginFailed, accountID, "", map[string]any{"reason": reason}))
	if s.metrics != nil {
		s.metrics.IncrementAuthFailures()
	}
}

// SessionInfo is returned by ValidateSession. QuickAccess is read fresh
// from the live record, never from the token.
type SessionInfo struct {
	Account   View      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidateSession decodes a session token and re-reads the live account.
// A token for a since-deactivated account fails validation even though its
// signature and expiry are still good.
func (s *Service) ValidateSession(ctx context.Context, raw string) (*SessionInfo, error) {
	claims, err := s.policy.Authenticate(raw)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementAuthFailures()
		}
		return nil, err
	}

	acct, err := s.store.Get(ctx, claims.AccountID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid token")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "load account")
	}
	if err := s.policy.RequireActive(acct); err != nil {
		return nil, err
	}

	info := &SessionInfo{Account: acct.ToView()}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// Logout exists for the audit trail only; tokens are stateless and expire
// on their own.
func (s *Service) Logout(ctx context.Context, claims *token.Claims) {
	if claims == nil {
		return
	}
	s.auditor.Record(ctx, s.entry(ctx, audit.ActionLogout, claims.AccountID, "", nil))
}

// CreateRequest carries the fields for a new account.
type CreateRequest struct {
	ID          string   `json:"user_id"`
	Name        string   `json:"name"`
	Password    string   `json:"password"`
	Access      []string `json:"access"`
	IsAdmin     bool     `json:"is_admin"`
	QuickAccess *bool    `json:"quick_access,omitempty"`
}

// Create registers a new account and initializes its activity summary.
func (s *Service) Create(ctx context.Context, req CreateRequest, actorID string) (*View, error) {
	accountID := NormalizeID(req.ID)
	if accountID == "" {
		return nil, dErrors.New(dErrors.CodeMalformedPayload, "user_id is required")
	}
	if req.Password == "" {
		return nil, dErrors.New(dErrors.CodeMalformedPayload, "password is required")
	}

	hash, err := secrets.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = accountID
	}
	quickAccess := true
	if req.QuickAccess != nil {
		quickAccess = *req.QuickAccess
	}
	accessList := req.Access
	if accessList == nil {
		accessList = []string{}
	}

	now := s.now().UTC()
	acct := &Account{
		ID:           accountID,
		Name:         name,
		PasswordHash: hash,
		Access:       accessList,
		IsAdmin:      req.IsAdmin,
		QuickAccess:  quickAccess,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, acct); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, fmt.Sprintf("account %q already exists", accountID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "create account")
	}

	if err := s.activity.Initialize(ctx, accountID, name); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to initialize activity summary",
			"account_id", accountID, "error", err)
	}

	s.auditor.Record(ctx, s.entry(ctx, audit.ActionAccountCreated, actorID, accountID, map[string]any{
		"is_admin": req.IsAdmin,
		"access":   accessList,
	}))
	if s.metrics != nil {
		s.metrics.IncrementAccountsCreated()
	}

	view := acct.ToView()
	return &view, nil
}

// UpdateRequest carries a partial account update. Absent fields leave the
// stored values untouched.
type UpdateRequest struct {
	Name        *string   `json:"name,omitempty"`
	Password    *string   `json:"password,omitempty"`
	Access      *[]string `json:"access,omitempty"`
	IsAdmin     *bool     `json:"is_admin,omitempty"`
	QuickAccess *bool     `json:"quick_access,omitempty"`
}

// Update applies a partial update to an account.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, actorID string) (*View, error) {
	accountID := NormalizeID(id)

	updates := Updates{
		Name:        req.Name,
		Access:      req.Access,
		IsAdmin:     req.IsAdmin,
		QuickAccess: req.QuickAccess,
	}
	var changed []string
	if req.Name != nil {
		changed = append(changed, "name")
	}
	if req.Access != nil {
		changed = append(changed, "access")
	}
	if req.IsAdmin != nil {
		changed = append(changed, "is_admin")
	}
	if req.QuickAccess != nil {
		changed = append(changed, "quick_access")
	}
	if req.Password != nil {
		hash, err := secrets.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates.PasswordHash = &hash
		changed = append(changed, "password")
	}
	if updates.Empty() {
		return nil, dErrors.New(dErrors.CodeMalformedPayload, "no fields to update")
	}

	acct, err := s.store.Update(ctx, accountID, updates)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("account %q not found", accountID))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "update account")
	}

	s.auditor.Record(ctx, s.entry(ctx, audit.ActionAccountUpdated, actorID, accountID, map[string]any{
		"fields": changed,
	}))

	view := acct.ToView()
	return &view, nil
}

// Deactivate soft-disables an account. The record and its history remain;
// only the active flag flips, which revokes every outstanding session on
// its next live check. Admins cannot deactivate themselves.
func (s *Service) Deactivate(ctx context.Context, id, actorID string) error {
	accountID := NormalizeID(id)
	if err := s.policy.ForbidSelfAction(actorID, accountID); err != nil {
		return err
	}

	inactive := false
	_, err := s.store.Update(ctx, accountID, Updates{IsActive: &inactive})
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("account %q not found", accountID))
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "deactivate account")
	}

	if err := s.activity.PauseTracking(ctx, accountID); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to pause activity tracking",
			"account_id", accountID, "error", err)
	}

	s.auditor.Record(ctx, s.entry(ctx, audit.ActionAccountDeactivated, actorID, accountID, nil))
	if s.metrics != nil {
		s.metrics.IncrementAccountsDeactivated()
	}
	return nil
}

// Reactivate re-enables a soft-disabled account.
func (s *Service) Reactivate(ctx context.Context, id, actorID string) error {
	accountID := NormalizeID(id)

	active := true
	_, err := s.store.Update(ctx, accountID, Updates{IsActive: &active})
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("account %q not found", accountID))
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "reactivate account")
	}

	if err := s.activity.ResumeTracking(ctx, accountID); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to resume activity tracking",
			"account_id", accountID, "error", err)
	}

	s.auditor.Record(ctx, s.entry(ctx, audit.ActionAccountReactivated, actorID, accountID, nil))
	return nil
}

// Get returns the account's transport view.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	acct, err := s.store.Get(ctx, NormalizeID(id))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "load account")
	}
	view := acct.ToView()
	return &view, nil
}

// List returns account views, optionally including deactivated accounts.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]View, error) {
	accounts, err := s.store.List(ctx, includeInactive)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "list accounts")
	}
	views := make([]View, 0, len(accounts))
	for _, acct := range accounts {
		views = append(views, acct.ToView())
	}
	return views, nil
}

// AccessibleDemos returns the live capability set for the subject.
func (s *Service) AccessibleDemos(ctx context.Context, claims *token.Claims) ([]string, bool, error) {
	acct, err := s.store.Get(ctx, claims.AccountID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodePersistence, "load account")
	}
	if err := s.policy.RequireActive(acct); err != nil {
		return nil, false, err
	}
	accessList := acct.Access
	if accessList == nil {
		accessList = []string{}
	}
	return accessList, acct.QuickAccess, nil
}

// CheckDemoAccess reports whether the subject may open the demo, deciding
// from the live record only. Each check leaves a trail entry.
func (s *Service) CheckDemoAccess(ctx context.Context, claims *token.Claims, demoID string) (bool, error) {
	if demoID == "" {
		return false, dErrors.New(dErrors.CodeMalformedPayload, "demo_id is required")
	}

	acct, err := s.store.Get(ctx, claims.AccountID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return false, dErrors.Wrap(err, dErrors.CodePersistence, "load account")
	}

	allowed := err == nil && s.policy.AuthorizeResource(claims, acct, demoID)
	s.auditor.Record(ctx, s.entry(ctx, audit.ActionDemoAccessChecked, claims.AccountID, demoID, map[string]any{
		"allowed": allowed,
	}))
	return allowed, nil
}

func (s *Service) entry(ctx context.Context, action audit.Action, actorID, targetID string, details map[string]any) audit.Entry {
	return audit.Entry{
		Action:    action,
		ActorID:   actorID,
		TargetID:  targetID,
		Details:   details,
		IPAddress: middleware.ClientIP(ctx),
		UserAgent: middleware.UserAgent(ctx),
	}
}
