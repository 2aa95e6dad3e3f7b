package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alumnihub-dev/alumnihub/internal/cli/client"
)

// NewProfileCmd creates the profile update command
func NewProfileCmd() *cobra.Command {
	var (
		name     string
		phone    string
		gradYear int
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the logged-in member's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}

			// Only flags the user actually set become part of the update
			req := client.UpdateProfileRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("phone") {
				req.Phone = &phone
			}
			if cmd.Flags().Changed("graduation-year") {
				req.GraduationYear = &gradYear
			}

			if req.Name == nil && req.Phone == nil && req.GraduationYear == nil {
				return fmt.Errorf("nothing to update (use --name, --phone or --graduation-year)")
			}

			user, err := a.api.UpdateProfile(cmd.Context(), req)
			if err != nil {
				if apiErr, ok := err.(*client.APIError); ok && apiErr.HasFieldErrors() {
					printFieldErrors(apiErr)
					return fmt.Errorf("update failed: %s", apiErr.Message)
				}
				return fmt.Errorf("update failed: %w", err)
			}

			a.session.SetUser(user)

			fmt.Println("✓ Profile updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().IntVar(&gradYear, "graduation-year", 0, "Graduation year")

	return cmd
}
