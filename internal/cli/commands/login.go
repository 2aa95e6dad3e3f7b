package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the AlumniHub server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set ALUMNIHUB_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set ALUMNIHUB_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, email, password string) error {
	// Environment variables are useful for CI
	if email == "" {
		email = os.Getenv("ALUMNIHUB_EMAIL")
	}
	if password == "" {
		password = os.Getenv("ALUMNIHUB_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or ALUMNIHUB_EMAIL env var)")
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or ALUMNIHUB_PASSWORD env var)")
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	fmt.Printf("Logging in to %s...\n", a.cfg.APIURL)

	if err := a.session.Login(cmd.Context(), email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	user := a.session.CurrentUser()
	fmt.Println("✓ Login successful!")
	if user != nil {
		fmt.Printf("  Member: %s (%s)\n", user.Name, user.Email)
		if user.MemberNumber != "" {
			fmt.Printf("  Number: %s\n", user.MemberNumber)
		}
	}

	return nil
}
