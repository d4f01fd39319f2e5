package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "demogate/pkg/domain-errors"
)

// Claims carries the identity snapshot embedded in a session token. The
// capability list is advisory only: authorization always re-reads the live
// account record, so a stale snapshot can never grant access by itself.
type Claims struct {
	AccountID string   `json:"user_id"`
	Name      string   `json:"name"`
	Access    []string `json:"access"`
	IsAdmin   bool     `json:"is_admin"`
	jwt.RegisteredClaims
}

// Service issues and verifies signed session tokens. It is a pure function
// of its configuration plus the clock; it holds no persistent state.
type Service struct {
	signingKey []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects a clock, used by tests to pin issuance time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a token service. The algorithm name comes from secret
// config; anything other than HS256 is rejected at startup by the caller,
// so an unknown name falls back to HS256 here.
func New(signingKey string, algorithm string, defaultTTL time.Duration, opts ...Option) *Service {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	s := &Service{
		signingKey: []byte(signingKey),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue builds claims for the subject and returns a signed compact token.
// A zero ttl selects the configured default. Timestamps are truncated to
// whole seconds so the signature is stable over the canonical claim form.
func (s *Service) Issue(accountID, name string, access []string, isAdmin bool, ttl time.Duration) (string, error) {
	if accountID == "" {
		return "", dErrors.New(dErrors.CodeMalformedPayload, "account id is required")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if access == nil {
		access = []string{}
	}

	now := s.now().Truncate(time.Second)
	claims := Claims{
		AccountID: accountID,
		Name:      name,
		Access:    access,
		IsAdmin:   isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signed, nil
}

// Verify reports whether the token is signature-valid and unexpired.
// It has no side effects.
func (s *Service) Verify(raw string) bool {
	_, err := s.Decode(raw)
	return err == nil
}

// Decode parses and validates a token, returning the embedded claims.
// Errors carry stable codes: token_expired for an expired but well-formed
// token, token_invalid for anything tampered, malformed, or mis-signed.
func (s *Service) Decode(raw string) (*Claims, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeTokenExpired, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeTokenInvalid, "invalid token")
	}
	return claims, nil
}
