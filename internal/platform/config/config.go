package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Secrets is a read-through cache over the process secret source. In
// production the source is the deployment environment; values are immutable
// for the life of the process, so the cache is never invalidated except by
// ClearCache, which exists for tests.
type Secrets struct {
	mu    sync.RWMutex
	cache map[string]string
}

// NewSecrets constructs an empty secret cache.
func NewSecrets() *Secrets {
	return &Secrets{cache: make(map[string]string)}
}

var (
	defaultSecrets *Secrets
	defaultOnce    sync.Once
)

// Default returns the process-wide secret source, initialized exactly once.
func Default() *Secrets {
	defaultOnce.Do(func() {
		defaultSecrets = NewSecrets()
	})
	return defaultSecrets
}

// Get returns the named secret, falling back to def when unset.
func (s *Secrets) Get(name, def string) string {
	s.mu.RLock()
	if v, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return v
	}
	s.mu.RUnlock()

	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}

	s.mu.Lock()
	s.cache[name] = v
	s.mu.Unlock()
	return v
}

// GetInt returns the named secret parsed as an integer, or def when unset
// or unparsable.
func (s *Secrets) GetInt(name string, def int) int {
	v := s.Get(name, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// MustGet returns the named secret or an error when it is absent. Required
// values fail fast at process start instead of surfacing mid-request.
func (s *Secrets) MustGet(name string) (string, error) {
	v := s.Get(name, "")
	if v == "" {
		return "", fmt.Errorf("required secret %s is not set", name)
	}
	return v, nil
}

// ClearCache drops all cached values. Tests use this between cases; it is
// never called on a live serving path.
func (s *Secrets) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]string)
}

// Server captures process-level configuration resolved at startup.
type Server struct {
	Addr         string
	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration
	CORSOrigins  []string
	DBPath       string
}

// Load builds a Server config from the secret source and validates it.
// Missing or weak required values abort startup.
func Load(secrets *Secrets) (Server, error) {
	jwtSecret, err := secrets.MustGet("JWT_SECRET")
	if err != nil {
		return Server{}, err
	}
	if len(jwtSecret) < 32 {
		return Server{}, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	addr := secrets.Get("DEMOGATE_ADDR", ":8080")
	alg := secrets.Get("JWT_ALGORITHM", "HS256")
	ttlHours := secrets.GetInt("JWT_EXPIRATION_HOURS", 24)

	origins := strings.Split(secrets.Get("CORS_ORIGINS", "http://localhost:8080"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return Server{
		Addr:         addr,
		JWTSecret:    jwtSecret,
		JWTAlgorithm: alg,
		TokenTTL:     time.Duration(ttlHours) * time.Hour,
		CORSOrigins:  origins,
		DBPath:       secrets.Get("DEMOGATE_DB_PATH", "demogate.db"),
	}, nil
}
