// Package main provides account management utilities for clubhub.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"clubhub/internal/config"
	"clubhub/internal/database"
	"clubhub/internal/models"
	"clubhub/internal/repository"
	"clubhub/internal/validation"
)

const usage = `Usage:
  admin set-role <email> <student|club|admin>   - Change a user's role
  admin list-admins                             - List all admins`

var errUsage = errors.New("invalid arguments")

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := run(context.Background(), repository.NewUserRepository(db), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usage)
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, users repository.UserRepository, args []string, out io.Writer) error {
	switch args[0] {
	case "set-role":
		if len(args) != 3 {
			return errUsage
		}
		return setRole(ctx, users, args[1], args[2], out)
	case "list-admins":
		return listAdmins(ctx, users, out)
	default:
		return fmt.Errorf("unknown command: %s: %w", args[0], errUsage)
	}
}

func setRole(ctx context.Context, users repository.UserRepository, email, rawRole string, out io.Writer) error {
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return fmt.Errorf("invalid role %q: use student, club or admin", rawRole)
	}

	user, err := users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return fmt.Errorf("no user with email %s", email)
		}
		return err
	}

	if user.Role == role {
		fmt.Fprintf(out, "%s (ID: %d) is already %s\n", user.Email, user.ID, role)
		return nil
	}
	if err := users.UpdateRole(ctx, user.ID, role); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %s (ID: %d): %s -> %s\n", user.Email, user.ID, user.Role, role)
	return nil
}

func listAdmins(ctx context.Context, users repository.UserRepository, out io.Writer) error {
	admins, err := users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		fmt.Fprintln(out, "No admins found")
		return nil
	}
	for _, a := range admins {
		fmt.Fprintf(out, "ID: %d | Email: %s\n", a.ID, a.Email)
	}
	return nil
}
