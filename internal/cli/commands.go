package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/sagepaypi/internal/api/handlers"
	"github.com/baharkarakas/sagepaypi/internal/app"
	"github.com/baharkarakas/sagepaypi/internal/auth"
	"github.com/baharkarakas/sagepaypi/internal/config"
	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/baharkarakas/sagepaypi/internal/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context(), func(c *config.Config) {
			c.Storage = app.StoragePostgres
			c.Migrate = true
		})
		if err != nil {
			return err
		}
		a.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

// txCommand builds a command that runs op on the transaction named by the
// single argument and prints the result.
func txCommand(use, short string, op func(ctx context.Context, svc *services.TransactionService, id string) (models.Transaction, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <transaction-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			tx, err := op(cmd.Context(), a.Txns, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tx)
		},
	}
}

var outcomeCmd = txCommand("outcome", "Refresh a transaction's outcome from the gateway",
	func(ctx context.Context, svc *services.TransactionService, id string) (models.Transaction, error) {
		return svc.Outcome(ctx, id)
	})

var abortCmd = txCommand("abort", "Abort a deferred transaction",
	func(ctx context.Context, svc *services.TransactionService, id string) (models.Transaction, error) {
		return svc.Abort(ctx, id)
	})

var voidCmd = txCommand("void", "Void a payment or refund made today",
	func(ctx context.Context, svc *services.TransactionService, id string) (models.Transaction, error) {
		return svc.Void(ctx, id)
	})

var releaseAmount int64

var releaseCmd = txCommand("release", "Release a deferred transaction",
	func(ctx context.Context, svc *services.TransactionService, id string) (models.Transaction, error) {
		var amount *int64
		if releaseAmount > 0 {
			amount = &releaseAmount
		}
		return svc.Release(ctx, id, amount)
	})

var overrides services.Overrides

var repeatCmd = txCommand("repeat", "Charge a successful transaction's card again",
	func(ctx context.Context, svc *services.TransactionService, id string) (models.Transaction, error) {
		return svc.Repeat(ctx, id, overrides)
	})

var refundCmd = txCommand("refund", "Refund a successful transaction",
	func(ctx context.Context, svc *services.TransactionService, id string) (models.Transaction, error) {
		return svc.Refund(ctx, id, overrides)
	})

var tokenCmd = &cobra.Command{
	Use:   "token <transaction-id>",
	Short: "Print the callback URL pair for a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		tx, err := a.Txns.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tidb64, token := a.Txns.Tokens(tx)
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"tidb64":   tidb64,
			"token":    token,
			"term_url": handlers.TermURL(tidb64, token),
		})
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for OPERATOR_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	releaseCmd.Flags().Int64Var(&releaseAmount, "amount", 0, "Amount to release in minor units (default: full amount)")

	for _, c := range []*cobra.Command{repeatCmd, refundCmd} {
		c.Flags().Int64Var(&overrides.Amount, "amount", 0, "Override the amount in minor units")
		c.Flags().StringVar(&overrides.Description, "description", "", "Override the description")
		c.Flags().StringVar(&overrides.VendorTxCode, "vendor-tx-code", "", "Vendor transaction code for the new transaction")
	}
	repeatCmd.Flags().StringVar(&overrides.Currency, "currency", "", "Override the currency (refunds always use the original)")
}
