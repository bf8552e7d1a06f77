package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	authcore "github.com/NordCoder/session-gateway/internal/auth"
	"github.com/NordCoder/session-gateway/internal/credentials"
	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	"github.com/NordCoder/session-gateway/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// countingHasher records how many digests were computed.
type countingHasher struct {
	Hasher
	hashes atomic.Int32
}

func (h *countingHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	h.hashes.Add(1)
	return h.Hasher.Hash(ctx, plaintext)
}

type memAccounts struct {
	mu     sync.Mutex
	byID   map[string]*user.Account
	seq    int
	writes int
}

func newMemAccounts() *memAccounts { return &memAccounts{byID: map[string]*user.Account{}} }

func (m *memAccounts) Create(_ context.Context, a *user.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for _, x := range m.byID {
		if x.Username == a.Username || x.Email == a.Email {
			return user.ErrConflict
		}
	}
	m.seq++
	a.ID = fmt.Sprintf("acc-%d", m.seq)
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) FindByIdentity(_ context.Context, l user.Lookup) (*user.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if (l.Username == "" || x.Username == l.Username) && (l.Email == "" || x.Email == l.Email) && !l.Empty() {
			cp := *x
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memAccounts) Exists(_ context.Context, l user.Lookup) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if (l.Username != "" && x.Username == l.Username) || (l.Email != "" && x.Email == l.Email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccounts) UpdateCredential(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	a, ok := m.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

type memRoles map[string]user.Role

func (m memRoles) GetByID(_ context.Context, id string) (*user.Role, error) {
	r, ok := m[id]
	if !ok {
		return nil, user.ErrRoleNotFound
	}
	return &r, nil
}

func (m memRoles) List(context.Context) ([]user.Role, error) {
	out := make([]user.Role, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	return out, nil
}

type inlineTx struct{ calls int }

func (t *inlineTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	fail    bool
}

func (d *memDenylist) Revoke(_ context.Context, id string, exp time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("redis unavailable")
	}
	d.revoked[id] = exp
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return false, errors.New("redis unavailable")
	}
	_, ok := d.revoked[id]
	return ok, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domainauth.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domainauth.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []domainauth.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domainauth.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const (
	accessTTL  = time.Hour
	refreshTTL = 7 * 24 * time.Hour
	roleID     = "r1"
)

type fixture struct {
	clk      *clock
	accounts *memAccounts
	tx       *inlineTx
	deny     *memDenylist
	pub      *recordingPublisher
	events   *Emitter
	tokens   *authcore.Manager
	hasher   *countingHasher
	uc       *Usecase
	router   *gin.Engine
}

type fixtureOpt func(*Deps, *CookieConfig)

func withRevocation() fixtureOpt {
	return func(d *Deps, _ *CookieConfig) { d.Revocation = true }
}

func withSecureCookies() fixtureOpt {
	return func(_ *Deps, c *CookieConfig) { c.Secure = true }
}

func newFixture(t *testing.T, opts ...fixtureOpt) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		clk:      &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		accounts: newMemAccounts(),
		tx:       &inlineTx{},
		deny:     &memDenylist{revoked: map[string]time.Time{}},
		pub:      &recordingPublisher{},
	}

	tokens, err := authcore.NewManager(authcore.Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Issuer:        "session-gateway-test",
		Now:           f.clk.Now,
	})
	require.NoError(t, err)
	f.tokens = tokens

	hasher, err := credentials.NewHasher(credentials.HasherConfig{Cost: bcrypt.MinCost, Workers: 2})
	require.NoError(t, err)
	f.hasher = &countingHasher{Hasher: hasher}

	verifier := authcore.NewVerifier(tokens, f.deny)
	f.events = NewEmitter(f.pub, nil)

	deps := Deps{
		Accounts: f.accounts,
		Roles:    memRoles{roleID: {ID: roleID, Name: "READER", Permissions: []user.Permission{user.PermissionRead}}},
		Tx:       f.tx,
		Hasher:   f.hasher,
		Tokens:   tokens,
		Verifier: verifier,
		Events:   f.events,
	}
	cookies := CookieConfig{Path: "/", AccessTTL: accessTTL, RefreshTTL: refreshTTL}
	for _, o := range opts {
		o(&deps, &cookies)
	}

	f.uc = NewUsecase(deps)
	f.router = gin.New()
	NewHandler(f.uc, verifier, Opts{Cookies: cookies, Events: f.events}).Register(f.router)
	return f
}

func (f *fixture) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

const alicePayload = `{"username":"@alice123","email":"a@x.com","password":"longenough1","roleId":"r1"}`

// signedIn registers alice and returns the cookies of a fresh sign-in.
func (f *fixture) signedIn(t *testing.T) (access, refresh *http.Cookie) {
	t.Helper()
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/sign-up", alicePayload).Code)
	w := f.do(http.MethodPost, "/sign-in", `{"username":"@alice123","password":"longenough1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	access, refresh = cookieNamed(w, AccessCookie), cookieNamed(w, RefreshCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	return access, refresh
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
