// Admin tool for database migrations and account management.
package main

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	"github.com/lyracrm/lyra/business/domain/accessbus"
	"github.com/lyracrm/lyra/business/domain/accessbus/stores/accessdb"
	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/domain/clientbus/stores/clientdb"
	"github.com/lyracrm/lyra/business/domain/userbus"
	"github.com/lyracrm/lyra/business/domain/userbus/stores/usercache"
	"github.com/lyracrm/lyra/business/domain/userbus/stores/userdb"
	"github.com/lyracrm/lyra/business/sdk/sqldb"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/password"
	"github.com/lyracrm/lyra/business/types/role"
	"github.com/lyracrm/lyra/foundation/logger"
)

//go:embed sql/schema.sql
var schemaDoc string

//go:embed sql/seed.sql
var seedDoc string

type Config struct {
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"lyra"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN-TOOL", nil)
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	userBus := userbus.NewCore(usercache.NewStore(log, userdb.NewStore(log, db), time.Minute))
	clientBus := clientbus.NewCore(clientdb.NewStore(log, db))
	accessBus := accessbus.NewCore(accessdb.NewStore(log, db), userBus, clientBus)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: migrate, seed, create-user, grant-client")
		return nil
	}

	switch os.Args[1] {
	case "migrate":
		return runMigrate(ctx, db)
	case "seed":
		return runSeed(ctx, db)
	case "create-user":
		return runCreateUser(ctx, userBus, os.Args[2:])
	case "grant-client":
		return runGrantClient(ctx, accessBus, os.Args[2:])
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

func runMigrate(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := sqldb.StatusCheck(ctx, db); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaDoc); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	fmt.Println("migrations complete")
	return nil
}

func runSeed(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := sqldb.StatusCheck(ctx, db); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if errTx := tx.Rollback(); errTx != nil {
			if errors.Is(errTx, sql.ErrTxDone) {
				return
			}
			fmt.Println("seed rollback:", errTx)
		}
	}()

	if _, err := tx.ExecContext(ctx, seedDoc); err != nil {
		return fmt.Errorf("applying seed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	fmt.Println("seed complete")
	return nil
}

func runCreateUser(ctx context.Context, ub *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-user", flag.ExitOnError)
	emailStr := cmd.String("email", "", "User email (Required)")
	passStr := cmd.String("password", "", "User password (Required)")
	nameStr := cmd.String("name", "", "User full name (Required)")
	roleStr := cmd.String("role", "VIEWER", "User role (ADMIN, OPERATOR, VIEWER)")
	cmd.Parse(args)

	if *emailStr == "" || *passStr == "" || *nameStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	n, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	r, err := role.Parse(*roleStr)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	p, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	usr, err := ub.Create(ctx, userbus.NewUser{
		Name:     n,
		Email:    *addr,
		Password: p,
		Role:     r,
	})
	if err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}

	fmt.Printf("\nSUCCESS: User created!\nID: %d\nEmail: %s\nRole: %s\n", usr.ID, usr.Email.Address, usr.Role)
	return nil
}

func runGrantClient(ctx context.Context, ab *accessbus.Core, args []string) error {
	cmd := flag.NewFlagSet("grant-client", flag.ExitOnError)
	userID := cmd.Int64("user-id", 0, "User ID (Required)")
	clientID := cmd.Int64("client-id", 0, "Client ID (Required)")
	permissions := cmd.String("permissions", "", "Permissions string")
	cmd.Parse(args)

	if *userID == 0 || *clientID == 0 {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required IDs")
	}

	uc, err := ab.Grant(ctx, accessbus.NewUserClient{
		UserID:      *userID,
		ClientID:    *clientID,
		Permissions: *permissions,
	})
	if err != nil {
		return fmt.Errorf("failed to grant client: %w", err)
	}

	fmt.Printf("\nSUCCESS: User %d granted access to client %d (grant %d)\n", uc.UserID, uc.ClientID, uc.ID)
	return nil
}

//go run api/tooling/admin/main.go migrate
//go run api/tooling/admin/main.go seed
//go run api/tooling/admin/main.go create-user -email "admin@example.com" -password "Admin123!" -name "Admin User" -role "ADMIN"
//go run api/tooling/admin/main.go grant-client -user-id 2 -client-id 1 -permissions "read,write"
