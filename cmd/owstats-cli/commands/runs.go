package commands

import (
	"os"
	"time"

	"owstats/lib/serviceutil"
	"owstats/lib/sqliteutil"
	"owstats/services/herostats"
	"owstats/services/herostats/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsDb *string
var runsLimit *int

func init() {
	runsDb = runsCmd.Flags().String("db", "owstats.db", "The database run outcomes were recorded to.")
	runsLimit = runsCmd.Flags().Int("limit", 20, "How many runs to print.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [run id]",
	Short: "Prints recorded scrape runs, or one run's tuple outcomes.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		database, err := sqliteutil.OpenDB(db.Schema, *runsDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		service := herostats.NewService(database, nil, herostats.Options{})

		if len(args) == 1 {
			run, outcomes, err := service.RunDetail(cmd.Context(), args[0])
			if err != nil {
				serviceutil.Fatal("failed to read run", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Run", "Started", "Finished", "Total", "Written", "Failed"})
			t.AppendRow(runRow(run))
			t.SetStyle(table.StyleRounded)
			t.Render()

			t = table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"#", "Tuple", "State", "Attempts", "Artifact", "Rows", "Error"})
			for _, o := range outcomes {
				t.AppendRow(table.Row{o.Position, o.Tuple, o.State, o.Attempts, o.Artifact, o.RowCount, o.Error})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return
		}

		runs, err := service.Runs(cmd.Context(), *runsLimit)
		if err != nil {
			serviceutil.Fatal("failed to list runs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Run", "Started", "Finished", "Total", "Written", "Failed"})
		for _, run := range runs {
			t.AppendRow(runRow(run))
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

func runRow(run db.Run) table.Row {
	finished := "-"
	if run.FinishedAt.Valid {
		finished = time.Unix(run.FinishedAt.Int64, 0).Format(time.ANSIC)
	}
	return table.Row{
		run.ID,
		time.Unix(run.StartedAt, 0).Format(time.ANSIC),
		finished,
		run.Total,
		run.Written,
		run.Failed,
	}
}
