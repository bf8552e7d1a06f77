package main

import (
	authcore "github.com/NordCoder/session-gateway/internal/auth"
	config "github.com/NordCoder/session-gateway/internal/config/session-gateway"
	"github.com/NordCoder/session-gateway/internal/credentials"
	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	pg "github.com/NordCoder/session-gateway/internal/repository/postgres"
	authsvc "github.com/NordCoder/session-gateway/internal/services/session-gateway/auth"
	rolesvc "github.com/NordCoder/session-gateway/internal/services/session-gateway/role"
	"go.uber.org/zap"
)

type app struct {
	auth   *authsvc.Handler
	roles  *rolesvc.Handler
	events *authsvc.Emitter
}

// buildApp wires the domain. Key or hasher misconfiguration fails here,
// before the listener opens.
func buildApp(cfg *config.Config, logger *zap.Logger, db *pg.DB, deny domainauth.Denylist, pub domainauth.EventPublisher) (*app, error) {
	tokens, err := authcore.NewManager(authcore.Config{
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
		Issuer:        cfg.Auth.Issuer,
		Leeway:        cfg.Auth.Leeway,
	})
	if err != nil {
		return nil, err
	}
	hasher, err := credentials.NewHasher(credentials.HasherConfig{
		Cost:    cfg.Auth.HashCost,
		Workers: cfg.Auth.HashWorkers,
	})
	if err != nil {
		return nil, err
	}

	verifier := authcore.NewVerifier(tokens, deny)
	events := authsvc.NewEmitter(pub, logger.Named("events"))
	roles := pg.NewRoleRepo(db)

	uc := authsvc.NewUsecase(authsvc.Deps{
		Accounts:   pg.NewAccountRepo(db),
		Roles:      roles,
		Tx:         pg.NewTransactor(db, logger.Named("tx")),
		Hasher:     hasher,
		Tokens:     tokens,
		Verifier:   verifier,
		Events:     events,
		Log:        logger.Named("auth"),
		Revocation: cfg.Auth.Revocation,
	})

	return &app{
		auth: authsvc.NewHandler(uc, verifier, authsvc.Opts{
			Cookies: authsvc.CookieConfig{
				Secure:     cfg.App.IsProduction(),
				Domain:     cfg.Auth.CookieDomain,
				Path:       cfg.Auth.CookiePath,
				AccessTTL:  cfg.Auth.AccessTTL,
				RefreshTTL: cfg.Auth.RefreshTTL,
			},
			Events: events,
			Logger: logger.Named("auth"),
		}),
		roles:  rolesvc.NewHandler(roles, logger.Named("roles")),
		events: events,
	}, nil
}
