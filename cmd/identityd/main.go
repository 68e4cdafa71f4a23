// Command identityd is a reference identity service for local development.
// It serves GET /user for tokens it issued through POST /user/auth0.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/internal/oidc"
	"github.com/ovaphlow/pitchfork/identity-sdk-go/internal/router"
	"github.com/ovaphlow/pitchfork/identity-sdk-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/identity-sdk-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/database"
	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/utilities"
)

type config struct {
	Addr     string        `env:"IDENTITYD_ADDR" envDefault:"0.0.0.0:8432"`
	Issuer   string        `env:"IDENTITYD_ISSUER" envDefault:"http://localhost:8432"`
	TokenTTL time.Duration `env:"IDENTITYD_TOKEN_TTL" envDefault:"1h"`
}

func main() {
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting identityd")

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		sugar.Fatalf("identityd config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// init db
	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("database config: %v", err)
	}
	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	repo := userrepo.NewUserRepo(db)
	if err := repo.EnsureTable(ctx); err != nil {
		sugar.Fatalf("ensure identity_users table: %v", err)
	}

	node, err := utilities.NewSnowflakeNode()
	if err != nil {
		sugar.Fatalf("snowflake node: %v", err)
	}
	tokens, err := oidc.NewTokenService(cfg.Issuer, cfg.TokenTTL)
	if err != nil {
		sugar.Fatalf("token service: %v", err)
	}

	users := user.NewHandler(user.NewUserService(repo, utilities.SnowflakeIDs(node)), tokens, sugar.Named("user"))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.RegisterIdentityRoutes(sugar, users, oidc.NewHandler(tokens, cfg.Issuer)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	sugar.Infow("identityd is running; press Ctrl+C to stop", "addr", cfg.Addr, "issuer", cfg.Issuer)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
