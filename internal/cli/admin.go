package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/platewise/platewise/internal/app/accounts"
	"github.com/platewise/platewise/internal/daemon"
	"github.com/platewise/platewise/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminGrantCmd)
	adminCmd.AddCommand(adminDeductCmd)
	adminCmd.AddCommand(adminPromoteCmd)
	adminCmd.AddCommand(adminAccountsCmd)

	adminGrantCmd.Flags().StringP("description", "d", "", "Ledger entry description")
	adminDeductCmd.Flags().StringP("description", "d", "", "Ledger entry description")
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations against the local database",
	Long: `Administrative operations that work directly on the configured
database, for bootstrapping and support work without going through the API.`,
}

// openAccounts opens the store and builds an account service for one-shot
// admin commands.
func openAccounts() (*accounts.Service, *sqlite.DB, error) {
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return accounts.NewService(db, nil, log), db, nil
}

// ─── admin grant-credits ────────────────────────────────────────────────────

var adminGrantCmd = &cobra.Command{
	Use:   "grant-credits ACCOUNT_ID AMOUNT",
	Short: "Add credits to an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminGrant,
}

func runAdminGrant(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("amount must be an integer: %w", err)
	}
	desc, _ := cmd.Flags().GetString("description")

	svc, db, err := openAccounts()
	if err != nil {
		return err
	}
	defer db.Close()

	entry, balance, err := svc.GrantCredits(context.Background(), args[0], amount, desc)
	if err != nil {
		return err
	}
	fmt.Printf("%s: +%d credits (%s), new balance %d\n", args[0], amount, entry.ID, balance)
	return nil
}

// ─── admin deduct-credits ───────────────────────────────────────────────────

var adminDeductCmd = &cobra.Command{
	Use:   "deduct-credits ACCOUNT_ID AMOUNT",
	Short: "Remove credits from an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminDeduct,
}

func runAdminDeduct(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("amount must be an integer: %w", err)
	}
	desc, _ := cmd.Flags().GetString("description")

	svc, db, err := openAccounts()
	if err != nil {
		return err
	}
	defer db.Close()

	entry, balance, err := svc.DeductCredits(context.Background(), args[0], amount, desc)
	if err != nil {
		return err
	}
	fmt.Printf("%s: -%d credits (%s), new balance %d\n", args[0], amount, entry.ID, balance)
	return nil
}

// ─── admin promote ──────────────────────────────────────────────────────────

var adminPromoteCmd = &cobra.Command{
	Use:   "promote EMAIL",
	Short: "Give an account admin rights",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminPromote,
}

func runAdminPromote(cmd *cobra.Command, args []string) error {
	_, db, err := openAccounts()
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := db.GetAccountByEmail(context.Background(), args[0])
	if err != nil {
		return err
	}
	if err := db.SetAdmin(context.Background(), a.ID, true); err != nil {
		return err
	}
	fmt.Printf("%s (%s) is now an admin\n", a.Email, a.ID)
	return nil
}

// ─── admin accounts ─────────────────────────────────────────────────────────

var adminAccountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List all accounts",
	Args:  cobra.NoArgs,
	RunE:  runAdminAccounts,
}

func runAdminAccounts(cmd *cobra.Command, args []string) error {
	svc, db, err := openAccounts()
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := svc.ListAccounts(context.Background())
	if err != nil {
		return err
	}
	for _, a := range list {
		role := "customer"
		if a.IsAdmin {
			role = "admin"
		}
		fmt.Printf("%-10s %-30s %-9s %8d credits  %s\n", a.ID, a.Email, role, a.Credits, a.Status)
	}
	fmt.Printf("%d accounts\n", len(list))
	return nil
}
