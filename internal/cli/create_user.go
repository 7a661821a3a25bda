package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mrlokans/conduit/internal/apperrors"
	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/database/users"
)

// CreateUserCommand registers an account without going through the API.
type CreateUserCommand struct {
	Username string
	Email    string
	Password string

	database databaseFlags
	auth     config.Auth
	out      io.Writer
}

func NewCreateUserCommand(cfg *config.Config) *CreateUserCommand {
	return &CreateUserCommand{
		database: newDatabaseFlags(cfg.Database),
		auth:     cfg.Auth,
		out:      os.Stdout,
	}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 8 characters (required)")
	cmd.database.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account directly in the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	if cmd.Username == "" {
		missing = append(missing, "-username")
	}
	if cmd.Email == "" {
		missing = append(missing, "-email")
	}
	if cmd.Password == "" {
		missing = append(missing, "-password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flags not provided: %v", missing)
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := cmd.database.open()
	if err != nil {
		return err
	}
	defer db.Close()

	// The token in the returned view is discarded, so any signing key will do.
	if cmd.auth.JWTSecret == "" {
		if cmd.auth.JWTSecret, err = auth.GenerateSecret(); err != nil {
			return err
		}
	}

	service := auth.NewService(users.NewRepository(db.DB), cmd.auth)
	view, err := service.Register(context.Background(), auth.RegisterInput{
		Username: cmd.Username,
		Email:    cmd.Email,
		Password: cmd.Password,
	})
	if err != nil {
		return describeError(err)
	}

	fmt.Fprintf(cmd.out, "Created user %s <%s>\n", view.Username, view.Email)
	return nil
}

// describeError flattens validation details into the message.
func describeError(err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || len(appErr.Details) == 0 {
		return err
	}

	fields := make([]string, 0, len(appErr.Details))
	for field := range appErr.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msg := appErr.Message
	for _, field := range fields {
		msg += fmt.Sprintf("; %s %s", field, appErr.Details[field])
	}
	return errors.New(msg)
}
