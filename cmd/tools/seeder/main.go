package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-orcamento/internal/auth"
	"github.com/noah-isme/backend-orcamento/internal/common"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
	"github.com/noah-isme/backend-orcamento/internal/obs"
	"github.com/noah-isme/backend-orcamento/internal/settings"
)

func main() {
	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info").With().Str("component", "seeder").Logger()

	var (
		name     = flag.String("name", os.Getenv("ADMIN_NAME"), "admin display name")
		email    = flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin login email")
		password = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (min 8 chars)")
		company  = flag.String("company", os.Getenv("COMPANY_NAME"), "company name, seeds settings when set")
	)
	flag.Parse()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	queries := dbgen.New(pool)

	if err := seedAdmin(ctx, queries, *name, *email, *password, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed admin")
	}
	if strings.TrimSpace(*company) != "" {
		if err := seedCompany(ctx, queries, *company, logger); err != nil {
			logger.Fatal().Err(err).Msg("seed company settings")
		}
	}
	logger.Info().Msg("seeding completed")
}

func seedAdmin(ctx context.Context, q *dbgen.Queries, name, email, password string, logger zerolog.Logger) error {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Only hashing is used here; the signer still wants a key.
		secret = "seeder"
	}
	svc, err := auth.NewService(auth.Config{Queries: q, Secret: secret, AccessTokenTTL: time.Hour})
	if err != nil {
		return err
	}
	user, err := svc.CreateAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}
	logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("admin ready")
	return nil
}

func seedCompany(ctx context.Context, q *dbgen.Queries, company string, logger zerolog.Logger) error {
	svc := &settings.Service{Q: q, Validate: common.NewValidator()}
	if _, err := svc.Get(ctx); err == nil {
		logger.Info().Msg("company settings already present, skipping")
		return nil
	}
	saved, err := svc.Upsert(ctx, settings.Input{Name: company})
	if err != nil {
		return err
	}
	logger.Info().Str("company", saved.Name).Msg("company settings created")
	return nil
}
