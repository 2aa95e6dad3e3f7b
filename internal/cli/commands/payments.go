package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/alumnihub-dev/alumnihub/internal/cli/client"
)

// NewPaymentsCmd creates the payments command group
func NewPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Manage membership payments",
	}

	cmd.AddCommand(newPaymentsListCmd())
	cmd.AddCommand(newPaymentsShowCmd())
	cmd.AddCommand(newPaymentsSubmitCmd())

	return cmd
}

func newPaymentsListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}

			payments, err := a.api.ListPayments(cmd.Context(), status)
			if err != nil {
				return err
			}

			if len(payments) == 0 {
				fmt.Println("No payments found.")
				fmt.Println("\nSubmit one with: alumnihub payments submit --amount <amount> --purpose <purpose>")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "REFERENCE\tAMOUNT\tPURPOSE\tSTATUS\tDATE")
			for _, p := range payments {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					p.Reference,
					formatAmount(p.AmountCents),
					p.Purpose,
					p.Status,
					p.CreatedAt.Format("2006-01-02"),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, confirmed, rejected)")

	return cmd
}

func newPaymentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [payment-id]",
		Short: "Show one payment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}

			var id string
			if len(args) > 0 {
				id = args[0]
			} else {
				id, err = pickPayment(cmd, a)
				if err != nil {
					return err
				}
			}

			payment, err := a.api.GetPayment(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("Reference: %s\n", payment.Reference)
			fmt.Printf("Amount:    %s\n", formatAmount(payment.AmountCents))
			fmt.Printf("Purpose:   %s\n", payment.Purpose)
			fmt.Printf("Status:    %s\n", payment.Status)
			fmt.Printf("Date:      %s\n", payment.CreatedAt.Format("2006-01-02 15:04"))
			if payment.Notes != "" {
				fmt.Printf("Notes:     %s\n", payment.Notes)
			}
			if payment.HasReceipt {
				fmt.Println("Receipt:   attached")
			}

			return nil
		},
	}
}

// pickPayment lets the user choose a payment interactively
func pickPayment(cmd *cobra.Command, a *app) (string, error) {
	payments, err := a.api.ListPayments(cmd.Context(), "")
	if err != nil {
		return "", err
	}
	if len(payments) == 0 {
		return "", fmt.Errorf("no payments to show")
	}

	items := make([]string, len(payments))
	for i, p := range payments {
		items[i] = fmt.Sprintf("%s  %s  %s (%s)", p.Reference, formatAmount(p.AmountCents), p.Purpose, p.Status)
	}

	prompt := promptui.Select{
		Label: "Select a payment",
		Items: items,
		Size:  10,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}

	return payments[idx].ID, nil
}

func newPaymentsSubmitCmd() *cobra.Command {
	var (
		amount  string
		purpose string
		notes   string
		receipt string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a payment for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount == "" {
				return fmt.Errorf("amount is required (use --amount, e.g. --amount 150.00)")
			}
			if purpose == "" {
				return fmt.Errorf("purpose is required (use --purpose: membership_dues or donation)")
			}
			if receipt != "" {
				if _, err := os.Stat(receipt); err != nil {
					return fmt.Errorf("receipt file not found: %s", receipt)
				}
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}

			payment, err := a.api.SubmitPayment(cmd.Context(), client.SubmitPaymentRequest{
				Amount:      amount,
				Purpose:     purpose,
				Notes:       notes,
				ReceiptPath: receipt,
			})
			if err != nil {
				if apiErr, ok := err.(*client.APIError); ok && apiErr.HasFieldErrors() {
					printFieldErrors(apiErr)
					return fmt.Errorf("submission failed: %s", apiErr.Message)
				}
				return err
			}

			fmt.Println("✓ Payment submitted for review.")
			fmt.Printf("  Reference: %s\n", payment.Reference)
			fmt.Printf("  Amount:    %s\n", formatAmount(payment.AmountCents))

			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 150.00")
	cmd.Flags().StringVar(&purpose, "purpose", "", "Purpose: membership_dues or donation")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional notes")
	cmd.Flags().StringVar(&receipt, "receipt", "", "Path to a receipt file to attach")

	return cmd
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
