package commands

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alumnihub-dev/alumnihub/internal/cli/client"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var (
		name     string
		email    string
		password string
		gradYear int
		phone    string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new AlumniHub account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, name, email, password, gradYear, phone)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().IntVar(&gradYear, "graduation-year", 0, "Graduation year")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (optional)")

	return cmd
}

func runRegister(cmd *cobra.Command, name, email, password string, gradYear int, phone string) error {
	if name == "" || email == "" || gradYear == 0 {
		return fmt.Errorf("name, email and graduation year are required (use --name, --email, --graduation-year)")
	}

	if password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		fmt.Print("Confirm password: ")
		byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		if string(bytePassword) != string(byteConfirm) {
			return fmt.Errorf("passwords do not match")
		}
		password = string(bytePassword)
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	result, err := a.api.Register(cmd.Context(), client.RegisterRequest{
		Name:           name,
		Email:          email,
		Password:       password,
		GraduationYear: gradYear,
		Phone:          phone,
	})
	if err != nil {
		if apiErr, ok := err.(*client.APIError); ok && apiErr.HasFieldErrors() {
			printFieldErrors(apiErr)
			return fmt.Errorf("registration failed: %s", apiErr.Message)
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	// The token is already stored; promote the session
	a.session.SetUser(result.User)

	fmt.Println("✓ Welcome to AlumniHub!")
	if result.User != nil {
		fmt.Printf("  Member number: %s\n", result.User.MemberNumber)
		fmt.Printf("  Status: %s\n", result.User.MembershipStatus)
	}

	return nil
}

func printFieldErrors(apiErr *client.APIError) {
	for field, messages := range apiErr.FieldErrors {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, strings.Join(messages, "; "))
	}
}
