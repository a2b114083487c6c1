package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/librarium/internal/auth"
	"github.com/mrlokans/librarium/internal/config"
	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/entities"
)

// CreateUserCommand provisions an account without going through the HTTP
// registration flow. Useful for bootstrapping the first administrator.
type CreateUserCommand struct {
	DatabasePath string
	Username     string
	Email        string
	Password     string
	Admin        bool
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email for the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password for the new account (required, min 12 characters)")
	fs.BoolVar(&cmd.Admin, "admin", false, "Grant the account the admin role")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account directly in the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username alice -email alice@example.com -password 'long-enough-secret' -admin\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("username, email and password are required")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	role := entities.UserRoleMember
	if cmd.Admin {
		role = entities.UserRoleAdmin
	}

	service := auth.NewService(db.DB, config.Auth{Mode: config.AuthModeLocal, BcryptCost: 12})
	user, token, err := service.CreateUser(cmd.Username, cmd.Email, cmd.Password, role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created %s account %q (id %d)\n", user.Role, user.Username, user.ID)
	fmt.Printf("API token (shown once, store it now): %s\n", token)
	return nil
}
