// Command create-admin provisions an administrator account in the configured
// database.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"entrepreneurhub/internal/config"
	"entrepreneurhub/internal/database"
	"entrepreneurhub/internal/logger"
	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/repository"
	"entrepreneurhub/internal/service"
	"entrepreneurhub/internal/token"
)

// readPassword is swapped in tests.
var readPassword = term.ReadPassword

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "admin email address")
	name := fs.String("name", "Admin", "admin display name")
	password := fs.String("password", "", "admin password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *email == "" {
		fmt.Fprintln(stderr, "-email is required")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	log := logger.New(cfg.Log.Format, cfg.Log.Level, stderr)
	slog.SetDefault(log)

	pw := *password
	if pw == "" {
		pw, err = promptPassword(stdout)
		if err != nil {
			fmt.Fprintf(stderr, "read password: %v\n", err)
			return 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		fmt.Fprintf(stderr, "open database: %v\n", err)
		return 1
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		fmt.Fprintf(stderr, "migrate database: %v\n", err)
		return 1
	}

	issuer, err := token.NewIssuer(cfg.JWT.Secret, token.WithTTL(cfg.JWT.TTL))
	if err != nil {
		fmt.Fprintf(stderr, "token issuer: %v\n", err)
		return 1
	}
	audit := service.NewAuditService(repository.NewAuditRepository(db.DB))
	auth, err := service.NewAuthService(repository.NewUserRepository(db.DB), issuer, audit, nil)
	if err != nil {
		fmt.Fprintf(stderr, "auth service: %v\n", err)
		return 1
	}

	admin, err := auth.CreateAdmin(ctx, *name, *email, pw)
	if errors.Is(err, model.ErrUserAlreadyExists) {
		fmt.Fprintf(stderr, "a user with email %s already exists\n", *email)
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "create admin: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "admin %s created with id %s\n", admin.Email, admin.ID)
	return 0
}

func promptPassword(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())

	fmt.Fprint(w, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	fmt.Fprint(w, "Confirm password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	if !bytes.Equal(first, second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("password cannot be empty")
	}
	return string(first), nil
}
