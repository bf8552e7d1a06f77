package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authcore "github.com/NordCoder/session-gateway/internal/auth"
	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// Sign-up, sign-in, then walk the session through access expiry and refresh
// expiry.
func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	access, refresh := f.signedIn(t)

	w := f.do(http.MethodGet, "/me", "", access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, cookieNamed(w, AccessCookie), "valid access token is not reissued")
	assert.Contains(t, w.Body.String(), `"username":"@alice123"`)

	f.clk.Advance(accessTTL + time.Minute)

	w = f.do(http.MethodGet, "/me", "", access, refresh)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := cookieNamed(w, AccessCookie)
	require.NotNil(t, rotated)
	assert.NotEqual(t, access.Value, rotated.Value)
	assert.Equal(t, int(accessTTL.Seconds()), rotated.MaxAge)

	fromRefresh, err := f.tokens.ParseRefresh(refresh.Value)
	require.NoError(t, err)
	fromRotated, err := f.tokens.ParseAccess(rotated.Value)
	require.NoError(t, err)
	assert.Equal(t, fromRefresh.Identity(), fromRotated.Identity())

	f.events.Wait()
	assert.Contains(t, f.pub.types(), domainauth.EventSessionRotated)

	f.clk.Advance(refreshTTL)

	w = f.do(http.MethodGet, "/me", "", rotated, refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeErr(t, w)
	assert.Equal(t, codeReauthenticate, body.Code)
	assert.Equal(t, msgReauthenticate, body.Message)
}

func TestVerify_RotatesWhenAccessCookieDropped(t *testing.T) {
	f := newFixture(t)
	_, refresh := f.signedIn(t)

	w := f.do(http.MethodGet, "/me", "", refresh)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, cookieNamed(w, AccessCookie))
}

func TestVerify_TamperedAccessNeverRotates(t *testing.T) {
	f := newFixture(t)
	access, refresh := f.signedIn(t)

	forged := &http.Cookie{Name: AccessCookie, Value: tamperSignature(access.Value)}
	w := f.do(http.MethodGet, "/me", "", forged, refresh)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, codeInvalidSession, decodeErr(t, w).Code)
	assert.Nil(t, cookieNamed(w, AccessCookie))
}

func TestVerify_Rejections(t *testing.T) {
	f := newFixture(t)
	access, refresh := f.signedIn(t)

	tests := []struct {
		name    string
		cookies []*http.Cookie
	}{
		{"no tokens", nil},
		{"refresh token as access", []*http.Cookie{{Name: AccessCookie, Value: refresh.Value}}},
		{"access token as refresh", []*http.Cookie{{Name: RefreshCookie, Value: access.Value}}},
		{"garbage", []*http.Cookie{{Name: AccessCookie, Value: "a.b.c"}, {Name: RefreshCookie, Value: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, "/me", "", tt.cookies...)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, msgUnauthorized, decodeErr(t, w).Message)
		})
	}
}

func TestVerify_DenylistFailure(t *testing.T) {
	f := newFixture(t)
	access, _ := f.signedIn(t)
	f.deny.fail = true

	w := f.do(http.MethodGet, "/me", "", access)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestVerify_SessionInContext(t *testing.T) {
	f := newFixture(t)
	access, _ := f.signedIn(t)

	r := gin.New()
	var got authcore.Session
	r.GET("/probe", Verify(authcore.NewVerifier(f.tokens, nil), CookieConfig{}, nil, nil), func(c *gin.Context) {
		got = authcore.SessionFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: access.Value})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	id, ok := got.User()
	require.True(t, ok)
	assert.Equal(t, "@alice123", id.Username)
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/anon", RequireSession(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/authed", func(c *gin.Context) {
		s := authcore.NewSession(domainauth.Identity{ID: "acc-1"})
		c.Request = c.Request.WithContext(authcore.WithSession(c.Request.Context(), s))
		c.Next()
	}, RequireSession(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/authed", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func tamperSignature(raw string) string {
	i := strings.LastIndexByte(raw, '.') + 1
	flipped := byte('A')
	if raw[i] == 'A' {
		flipped = 'B'
	}
	return raw[:i] + string(flipped) + raw[i+1:]
}
