package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
)

var (
	importFile    string
	importOwnerID string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the last extracted profile to the CRM",
	Long:  "Imports the most recently extracted profile, or a profile read from a JSON file with --file. Duplicates are detected by profile URL and email before creating.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var profile *model.ExtractedProfile
		if importFile != "" {
			data, err := os.ReadFile(importFile)
			if err != nil {
				return eris.Wrap(err, "read profile file")
			}
			profile = &model.ExtractedProfile{}
			if err := json.Unmarshal(data, profile); err != nil {
				return eris.Wrap(err, "parse profile file")
			}
		} else {
			profile, err = env.Store.LastProfile(ctx)
			if err != nil {
				return eris.Wrap(err, "load last profile")
			}
			if profile == nil {
				return eris.New("no extracted profile found; run extract first or pass --file")
			}
		}

		rec, err := env.Pipeline.ImportProfile(ctx, profile, importOwnerID)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("name", rec.Name),
			zap.String("status", string(rec.Status)),
			zap.String("crm_id", rec.CRMID),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "JSON file holding an extracted profile")
	importCmd.Flags().StringVar(&importOwnerID, "owner", "", "CRM owner ID to assign (overrides preferences)")
	rootCmd.AddCommand(importCmd)
}
