package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/extract"
	"github.com/sells-group/prospector/internal/notify"
	"github.com/sells-group/prospector/internal/store"
	"github.com/sells-group/prospector/pkg/browser"
)

var extractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract a profile from a rendered page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		session, err := browser.NewSession(ctx, cfg.Browser)
		if err != nil {
			return eris.Wrap(err, "attach browser")
		}
		defer session.Close()

		if err := session.Navigate(args[0]); err != nil {
			return eris.Wrap(err, "navigate")
		}

		selectors, err := extract.LoadSelectors(cfg.Extract.StrategyFile)
		if err != nil {
			return eris.Wrap(err, "load selectors")
		}

		extractor := extract.New(browser.NewDOM(session), selectors, supportedURL,
			extract.WithSink(st),
			extract.WithNotifier(notify.LogNotifier{}),
		)

		profile, err := extractor.Extract(ctx)
		if err != nil {
			return err
		}

		if extractJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(profile)
		}

		zap.L().Info("profile extracted",
			zap.String("name", profile.DisplayName()),
			zap.String("title", profile.JobTitle),
			zap.String("company", profile.Company),
			zap.String("url", profile.ProfileURL),
			zap.Int("experience", len(profile.Experience)),
			zap.Int("education", len(profile.Education)),
			zap.Int("skills", len(profile.Skills)),
		)
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print extracted profile as JSON")
	rootCmd.AddCommand(extractCmd)
}
