package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/leadfile"
)

var bulkOwnerID string

var bulkCmd = &cobra.Command{
	Use:   "bulk <file>",
	Short: "Import a lead list from a CSV or XLSX file",
	Long:  "Imports every lead in the file. Failed items are reported individually; the command fails only when no item succeeds.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		items, err := leadfile.Load(args[0])
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return eris.New("no leads found in file")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.ImportBulk(ctx, items, bulkOwnerID)
		if err != nil {
			return err
		}

		for _, item := range result.Errors {
			zap.L().Warn("item failed",
				zap.String("item", item.Item),
				zap.String("error", item.Error),
			)
		}
		zap.L().Info("bulk import complete",
			zap.Int("succeeded", result.SuccessCount),
			zap.Int("failed", result.ErrorCount),
		)
		return nil
	},
}

func init() {
	bulkCmd.Flags().StringVar(&bulkOwnerID, "owner", "", "CRM owner ID to assign (overrides preferences)")
	rootCmd.AddCommand(bulkCmd)
}
