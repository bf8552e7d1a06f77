package role

import (
	"net/http"

	"github.com/NordCoder/session-gateway/internal/domain/user"
	"github.com/NordCoder/session-gateway/internal/obs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	roles user.RoleRepo
	log   *zap.Logger
}

func NewHandler(roles user.RoleRepo, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{roles: roles, log: log}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/roles", h.List)
}

// List returns every role with its permissions. Public: sign-up needs a
// role id before the caller has a session.
func (h *Handler) List(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		obs.WithTrace(c.Request.Context(), h.log).Error("list roles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Unexpected error"})
		return
	}
	c.JSON(http.StatusOK, roles)
}
