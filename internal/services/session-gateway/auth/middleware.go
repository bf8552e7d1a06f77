package auth

import (
	"net/http"

	authcore "github.com/NordCoder/session-gateway/internal/auth"
	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	"github.com/NordCoder/session-gateway/internal/obs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Verify resolves the session from the request cookies. Authenticated
// requests continue with the session in their context and, when the access
// token was renewed, a fresh access cookie on the response. Everything else
// is rejected here, before any protected handler runs.
func Verify(v *authcore.Verifier, cookies CookieConfig, events *Emitter, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		presented := readPresented(c.Request)

		dec, err := v.Resolve(ctx, presented.Access, presented.Refresh)
		sessionDecisions.WithLabelValues(dec.State.String()).Inc()
		if err != nil {
			obs.WithTrace(ctx, log).Error("session verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Message: msgUnexpected})
			return
		}

		switch {
		case dec.Authenticated():
		case dec.ReauthenticationRequired():
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: msgReauthenticate, Code: codeReauthenticate})
			return
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: msgUnauthorized, Code: codeInvalidSession})
			return
		}

		if dec.Rotated != nil {
			cookies.setAccess(c.Writer, *dec.Rotated)
			id, _ := dec.Session.User()
			events.Emit(ctx, domainauth.Event{
				Type:      domainauth.EventSessionRotated,
				AccountID: id.ID,
				Username:  id.Username,
				TokenID:   dec.Rotated.ID,
			})
		}

		c.Request = c.Request.WithContext(authcore.WithSession(ctx, dec.Session))
		c.Next()
	}
}

// RequireSession admits only requests that carry an authenticated session.
// It must be mounted after Verify.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authcore.SessionFromContext(c.Request.Context()).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: msgUnauthorized})
			return
		}
		c.Next()
	}
}
