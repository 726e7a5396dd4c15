package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"observer-console.backend/internal/config"
	"observer-console.backend/internal/domain/entities"
	"observer-console.backend/pkg/jwt"
)

type devTokenDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	out     io.Writer
}

type devTokenOptions struct {
	userID string
	email  string
	role   string
	expiry time.Duration
}

func main() {
	opts := devTokenOptions{}
	flag.StringVar(&opts.userID, "user", "", "user id (uuid); a new one is generated when empty")
	flag.StringVar(&opts.email, "email", "observer@example.org", "email claim")
	flag.StringVar(&opts.role, "role", string(entities.UserRoleObserver), "role claim (observer, coordinator, admin, super_admin)")
	flag.DurationVar(&opts.expiry, "expiry", 0, "token lifetime (defaults to JWT_EXPIRY)")
	flag.Parse()

	deps := devTokenDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		out:     os.Stdout,
	}
	if err := run(deps, opts); err != nil {
		log.Fatal(err)
	}
}

func run(deps devTokenDeps, opts devTokenOptions) error {
	_ = deps.loadEnv()
	cfg := deps.loadCfg()
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	role := entities.UserRole(strings.TrimSpace(opts.role))
	switch role {
	case entities.UserRoleObserver, entities.UserRoleCoordinator, entities.UserRoleAdmin, entities.UserRoleSuperAdmin:
	default:
		return fmt.Errorf("invalid role: %s", opts.role)
	}

	userID := uuid.New()
	if opts.userID != "" {
		parsed, err := uuid.Parse(opts.userID)
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		userID = parsed
	}

	expiry := cfg.JWT.Expiry
	if opts.expiry > 0 {
		expiry = opts.expiry
	}

	token, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, expiry).IssueToken(userID, opts.email, string(role))
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Fprintf(deps.out, "USER_ID=%s\n", userID)
	fmt.Fprintf(deps.out, "ROLE=%s\n", role)
	fmt.Fprintf(deps.out, "TOKEN=%s\n", token)
	return nil
}
