package auth

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
	Now           func() time.Time
}

// Token is a signed credential together with the metadata the transport
// layer needs (cookie lifetime, revocation key).
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

type Pair struct {
	Access  Token
	Refresh Token
}

// Manager issues and parses both token kinds. It is immutable after
// construction and safe for concurrent use.
type Manager struct {
	cfg Config
}

func NewManager(cfg Config) (*Manager, error) {
	switch {
	case len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0:
		return nil, errors.New("access and refresh secrets are required")
	case bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret):
		return nil, errors.New("access and refresh secrets must differ")
	case cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0:
		return nil, errors.New("invalid TTL configuration")
	case cfg.AccessTTL >= cfg.RefreshTTL:
		return nil, errors.New("access TTL must be shorter than refresh TTL")
	case cfg.Leeway < 0:
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{cfg: cfg}, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.cfg.AccessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

func (m *Manager) IssueAccess(id domainauth.Identity) (Token, error) {
	return m.issue(KindAccess, id, m.cfg.Now())
}

func (m *Manager) IssueRefresh(id domainauth.Identity) (Token, error) {
	return m.issue(KindRefresh, id, m.cfg.Now())
}

// IssuePair signs both kinds from one identity snapshot and one clock reading.
func (m *Manager) IssuePair(id domainauth.Identity) (Pair, error) {
	now := m.cfg.Now()
	access, err := m.issue(KindAccess, id, now)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.issue(KindRefresh, id, now)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (m *Manager) ParseAccess(raw string) (*Claims, error) {
	return m.parse(KindAccess, raw)
}

func (m *Manager) ParseRefresh(raw string) (*Claims, error) {
	return m.parse(KindRefresh, raw)
}

func (m *Manager) issue(kind Kind, id domainauth.Identity, now time.Time) (Token, error) {
	if id.ID == "" {
		return Token{}, errors.New("identity without id")
	}
	jti, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return Token{}, fmt.Errorf("token id: %w", err)
	}

	claims := newClaims(kind, id)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        jti.String(),
		Subject:   id.ID,
		Issuer:    m.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl(kind))),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key(kind))
	if err != nil {
		return Token{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return Token{Value: signed, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// parse verifies signature first, then claims. ErrTokenExpired is only
// returned for tokens whose signature checked out.
func (m *Manager) parse(kind Kind, raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.cfg.Now),
	}
	if m.cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(m.cfg.Leeway))
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}

	claims := &Claims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.key(kind), nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: unexpected token kind %q", ErrTokenInvalid, claims.Kind)
	}
	if claims.UserID == "" || claims.Subject != claims.UserID || claims.ID == "" {
		return nil, fmt.Errorf("%w: incomplete identity", ErrTokenInvalid)
	}
	return claims, nil
}

func (m *Manager) key(kind Kind) []byte {
	if kind == KindRefresh {
		return m.cfg.RefreshSecret
	}
	return m.cfg.AccessSecret
}

func (m *Manager) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return m.cfg.RefreshTTL
	}
	return m.cfg.AccessTTL
}
