package cli

import (
	"fmt"
	"text/tabwriter"

	"content-pipeline/internal/credentials"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage stored provider API keys",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show which providers have a stored key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *credentials.Store) error {
			statuses, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tKEY\tUPDATED")
			for _, s := range statuses {
				updated := "-"
				if s.LastUpdated != nil {
					updated = s.LastUpdated.Format("2006-01-02 15:04:05")
				}
				state := "missing"
				if s.HasKey {
					state = "stored"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Provider, state, updated)
			}
			return w.Flush()
		})
	},
}

var keysSetCmd = &cobra.Command{
	Use:   "set <provider> <api-key>",
	Short: "Encrypt and store an API key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *credentials.Store) error {
			if err := store.Save(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key for %s saved\n", args[0])
			return nil
		})
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Remove a stored API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *credentials.Store) error {
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key for %s deleted\n", args[0])
			return nil
		})
	},
}

func init() {
	keysCmd.AddCommand(keysListCmd, keysSetCmd, keysDeleteCmd)
}

func withStore(cmd *cobra.Command, fn func(store *credentials.Store) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	pool, err := setupPostgres(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := newCredentialStore(cfg, pool, logger)
	if err != nil {
		logger.Error("Failed to init credential store", zap.Error(err))
		return err
	}
	return fn(store)
}
