package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"consulting_leads_backend/internal/auth"
	"consulting_leads_backend/internal/auth/transport"
	authvalidator "consulting_leads_backend/internal/auth/validator"
	"consulting_leads_backend/platform/config"
	"consulting_leads_backend/platform/db"
	"consulting_leads_backend/platform/logger"
	"consulting_leads_backend/platform/validator"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password (defaults to ADMIN_PASSWORD)")
	reset := flag.Bool("reset", false, "reset the password of an existing admin")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	val := validator.New()
	if err := authvalidator.Register(val); err != nil {
		panic("failed to register password rule: " + err.Error())
	}

	req := transport.CreateAdminRequest{Email: *email, Password: *password}
	if err := val.Struct(req); err != nil {
		fmt.Fprintln(os.Stderr, "invalid input:", validator.FieldErrors(err))
		fmt.Fprintln(os.Stderr, authvalidator.PasswordPolicy)
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	svc := auth.NewModule(pool, cfg, val, log).Service()

	if *reset {
		if err := svc.ResetPassword(ctx, req.Email, req.Password); err != nil {
			log.Error("failed to reset admin password", "email", req.Email, "error", err)
			os.Exit(1)
		}
		log.Info("admin password reset", "email", req.Email)
		return
	}

	profile, err := svc.CreateAdmin(ctx, req.Email, req.Password)
	if err != nil {
		log.Error("failed to create admin", "email", req.Email, "error", err)
		os.Exit(1)
	}
	log.Info("admin created", "id", profile.ID, "email", profile.Email)
}
