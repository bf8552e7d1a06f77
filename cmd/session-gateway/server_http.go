package main

import (
	"context"
	"net/http"
	"time"

	config "github.com/NordCoder/session-gateway/internal/config/session-gateway"
	"github.com/NordCoder/session-gateway/internal/obs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type readiness struct {
	db    pingFunc
	redis pingFunc
}

func (rd readiness) handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"db": "ok"}
	code := http.StatusOK
	if err := rd.db(ctx); err != nil {
		status["db"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if rd.redis != nil {
		status["redis"] = "ok"
		if err := rd.redis(ctx); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, status)
}

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, a *app, rd readiness) *http.Server {
	if !cfg.Log.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), obs.AccessLog(logger.Named("http")))

	router.GET("/healthz", rd.handle)
	router.GET("/metrics", gin.WrapH(obs.MetricsHandler()))

	a.auth.Register(router)
	a.roles.Register(router)

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           obs.HTTPHandler(router, "session-gateway"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
	return srv.ListenAndServe()
}
