package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent import records",
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

		limit := historyLimit
		if limit <= 0 || limit > model.MaxImportRecords {
			limit = model.MaxImportRecords
		}

		records, err := st.ListImportRecords(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "list records")
		}
		if len(records) == 0 {
			fmt.Println("no import records")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tTYPE\tNAME\tSTATUS\tCRM ID\tERROR")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				rec.Timestamp.Local().Format(time.DateTime),
				rec.Type, rec.Name, rec.Status, rec.CRMID, rec.Error,
			)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "max records to show (default all retained)")
	rootCmd.AddCommand(historyCmd)
}
