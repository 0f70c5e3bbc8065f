// @title           EduJobs API
// @version         1.0
// @description     Authentication, accounts and course enrollment for the EduJobs platform.
// @contact.name    EduJobs
// @contact.email   support@edujobs.dev
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "edujobs_backend/docs"
	"edujobs_backend/internal/app"
	"edujobs_backend/internal/config"
	"edujobs_backend/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Server.Env, cfg.Log.Level)

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("close app", logger.Err(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}
