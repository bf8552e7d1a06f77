package auth

import (
	"net/http"
	"time"

	authcore "github.com/NordCoder/session-gateway/internal/auth"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

type CookieConfig struct {
	// Secure is set in production only.
	Secure     bool
	Domain     string
	Path       string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (cc CookieConfig) cookie(name, value string, ttl time.Duration, expires time.Time) *http.Cookie {
	path := cc.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   cc.Domain,
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  expires.UTC(),
	}
}

func (cc CookieConfig) setAccess(w http.ResponseWriter, t authcore.Token) {
	http.SetCookie(w, cc.cookie(AccessCookie, t.Value, cc.AccessTTL, t.ExpiresAt))
}

func (cc CookieConfig) setPair(w http.ResponseWriter, p authcore.Pair) {
	cc.setAccess(w, p.Access)
	http.SetCookie(w, cc.cookie(RefreshCookie, p.Refresh.Value, cc.RefreshTTL, p.Refresh.ExpiresAt))
}

func (cc CookieConfig) clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c := cc.cookie(name, "", 0, time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func readPresented(r *http.Request) Presented {
	var p Presented
	if c, err := r.Cookie(AccessCookie); err == nil {
		p.Access = c.Value
	}
	if c, err := r.Cookie(RefreshCookie); err == nil {
		p.Refresh = c.Value
	}
	return p
}
