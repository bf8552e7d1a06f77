package auth

import (
	"net/http"

	authcore "github.com/NordCoder/session-gateway/internal/auth"
	"github.com/NordCoder/session-gateway/internal/credentials"
	"github.com/NordCoder/session-gateway/internal/obs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	uc       *Usecase
	verifier *authcore.Verifier
	cookies  CookieConfig
	events   *Emitter
	log      *zap.Logger
}

type Opts struct {
	Cookies CookieConfig
	Events  *Emitter
	Logger  *zap.Logger
}

func NewHandler(uc *Usecase, verifier *authcore.Verifier, o Opts) *Handler {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{uc: uc, verifier: verifier, cookies: o.Cookies, events: o.Events, log: log}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/sign-up", h.SignUp)
	r.POST("/sign-in", h.SignIn)
	r.POST("/sign-out", h.SignOut)

	protected := r.Group("")
	protected.Use(Verify(h.verifier, h.cookies, h.events, h.log), RequireSession())
	protected.POST("/change-password", h.ChangePassword)
	protected.GET("/me", h.Me)
}

func (h *Handler) bind(c *gin.Context, dst *credentials.Payload) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgBodyRequired})
		return false
	}
	return true
}

func (h *Handler) SignUp(c *gin.Context) {
	var req credentials.Payload
	if !h.bind(c, &req) {
		return
	}
	id, err := h.uc.SignUp(c.Request.Context(), req)
	if err != nil {
		writeErr(c, h.log, err, http.StatusInternalServerError)
		return
	}
	obs.WithTrace(c.Request.Context(), h.log).Info("auth.signup", zap.String("account_id", id.ID))
	c.JSON(http.StatusCreated, id)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req credentials.Payload
	if !h.bind(c, &req) {
		return
	}
	id, pair, err := h.uc.SignIn(c.Request.Context(), req)
	if err != nil {
		writeErr(c, h.log, err, http.StatusInternalServerError)
		return
	}
	h.cookies.setPair(c.Writer, pair)
	obs.WithTrace(c.Request.Context(), h.log).Info("auth.signin",
		zap.String("account_id", id.ID),
		zap.String("refresh_jti", pair.Refresh.ID))
	c.JSON(http.StatusOK, id)
}

// SignOut always clears both cookies. A failed revocation is logged; the
// client is signed out regardless.
func (h *Handler) SignOut(c *gin.Context) {
	presented := readPresented(c.Request)
	if err := h.uc.SignOut(c.Request.Context(), presented); err != nil {
		obs.WithTrace(c.Request.Context(), h.log).Warn("sign-out revocation failed", zap.Error(err))
	}
	h.cookies.clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": msgLogout})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req credentials.Payload
	if !h.bind(c, &req) {
		return
	}
	id, _ := authcore.SessionFromContext(c.Request.Context()).User()

	pair, err := h.uc.ChangePassword(c.Request.Context(), id, req, readPresented(c.Request))
	if err != nil {
		writeErr(c, h.log, err, http.StatusBadRequest)
		return
	}
	if pair != nil {
		h.cookies.setPair(c.Writer, *pair)
	}
	obs.WithTrace(c.Request.Context(), h.log).Info("auth.change_password", zap.String("account_id", id.ID))
	c.JSON(http.StatusOK, gin.H{"message": msgPasswordChanged})
}

func (h *Handler) Me(c *gin.Context) {
	id, _ := authcore.SessionFromContext(c.Request.Context()).User()
	c.JSON(http.StatusOK, id)
}
