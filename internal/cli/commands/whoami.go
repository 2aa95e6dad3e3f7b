package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in member's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}

			// requireAuth may have served a cached profile; refresh so the
			// output reflects the server
			if err := a.session.FetchUser(cmd.Context()); err != nil {
				return fmt.Errorf("failed to fetch profile: %w", err)
			}

			user := a.session.CurrentUser()
			if user == nil {
				return fmt.Errorf("no profile available")
			}

			fmt.Printf("Name:            %s\n", user.Name)
			fmt.Printf("Email:           %s\n", user.Email)
			fmt.Printf("Member number:   %s\n", user.MemberNumber)
			fmt.Printf("Graduation year: %d\n", user.GraduationYear)
			fmt.Printf("Status:          %s\n", user.MembershipStatus)
			if user.MembershipExpiry != nil {
				fmt.Printf("Expires:         %s\n", user.MembershipExpiry.Format("2006-01-02"))
			}
			if user.Phone != "" {
				fmt.Printf("Phone:           %s\n", user.Phone)
			}

			return nil
		},
	}
}
