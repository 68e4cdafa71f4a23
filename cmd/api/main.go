package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/internal/router"
	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/identity"
	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting identity-sdk example api")

	idCfg, err := identity.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("identity config: %v", err)
	}
	routerCfg, err := router.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("router config: %v", err)
	}
	addr := routerCfg.Addr

	client := identity.NewClientFromConfig(idCfg, identity.WithLogger(sugar.Named("identity")))
	auth := identity.NewAuthMiddleware(client, identity.WithMiddlewareLogger(sugar.Named("auth")))

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           router.RegisterRoutes(sugar, auth, routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	sugar.Infow("service is running; press Ctrl+C to stop", "addr", addr, "identity_service", idCfg.Domain)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
