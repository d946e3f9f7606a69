package commands

import (
	"os"

	"owstats/lib/scrapers/owrates"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var combosLimit *int

func init() {
	combosLimit = combosCmd.Flags().Int("limit", 0, "Limit the number of combinations printed.")
	rootCmd.AddCommand(combosCmd)
}

var combosCmd = &cobra.Command{
	Use:   "combos [--limit <n>]",
	Short: "Prints the combinations a full scrape would request, in order.",
	Run: func(cmd *cobra.Command, args []string) {
		seq := owrates.NewSequence(owrates.DefaultDomains(), *combosLimit)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Input", "Map", "Region", "Role", "RQ", "Tier"})
		for i, tuple := range seq.All() {
			t.AppendRow(table.Row{i, tuple.Input, tuple.Map, tuple.Region, tuple.Role, tuple.RQ, tuple.Tier})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
