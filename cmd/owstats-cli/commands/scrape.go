package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"owstats/lib/configutil"
	"owstats/lib/restyutil"
	"owstats/lib/scrapers/owrates"
	"owstats/lib/serviceutil"
	"owstats/lib/sqliteutil"
	"owstats/services/herostats"
	"owstats/services/herostats/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type NotifyConfig struct {
	Smtp SmtpConfig `json:"smtp"`
	To   []string   `json:"to"`
}

type Config struct {
	BaseUrl               string       `json:"base_url"`
	UserAgent             string       `json:"user_agent"`
	TimeoutSeconds        float64      `json:"timeout_seconds"`
	MaxAttempts           int          `json:"max_attempts"`
	InitialBackoffSeconds float64      `json:"initial_backoff_seconds"`
	BackoffMultiplier     float64      `json:"backoff_multiplier"`
	Notify                NotifyConfig `json:"notify"`
}

var scrapeOutputDir *string
var scrapeDelay *float64
var scrapeLimit *int
var scrapeSingle *bool
var scrapeInput *string
var scrapeMap *string
var scrapeRegion *string
var scrapeRole *string
var scrapeRq *string
var scrapeTier *string
var scrapeDb *string
var scrapeWorkers *int
var scrapeDebugHttp *bool

func init() {
	scrapeOutputDir = scrapeCmd.Flags().String("output-dir", "data", "Output directory for csv artifacts.")
	scrapeDelay = scrapeCmd.Flags().Float64("delay", 1.0, "Delay between requests (seconds).")
	scrapeLimit = scrapeCmd.Flags().Int("limit", 0, "Limit the number of combinations to process.")
	scrapeSingle = scrapeCmd.Flags().Bool("single", false, "Scrape a single combination.")
	scrapeInput = scrapeCmd.Flags().String("input", "", "Input device, e.g. PC.")
	scrapeMap = scrapeCmd.Flags().String("map", "all-maps", "Map name.")
	scrapeRegion = scrapeCmd.Flags().String("region", "", "Region, e.g. Europe.")
	scrapeRole = scrapeCmd.Flags().String("role", "", "Role, e.g. Damage.")
	scrapeRq = scrapeCmd.Flags().String("rq", "", "Role queue flag, 0 or 1.")
	scrapeTier = scrapeCmd.Flags().String("tier", "", "Competitive tier, e.g. Gold.")
	scrapeDb = scrapeCmd.Flags().String("db", "owstats.db", "The database to record run outcomes to.")
	scrapeWorkers = scrapeCmd.Flags().Int("workers", 1, "How many tuples to fetch concurrently.")
	scrapeDebugHttp = scrapeCmd.Flags().Bool("debug-http", false, "Dump http transcripts to .dev/resty/owrates.")
	rootCmd.AddCommand(scrapeCmd)
}

// singleTuple builds the tuple for a single-combination scrape from
// the per-field flags, validating them against the known domains.
func singleTuple(domains owrates.Domains) owrates.FilterTuple {
	tuple := owrates.FilterTuple{
		Input:  *scrapeInput,
		Map:    *scrapeMap,
		Region: *scrapeRegion,
		Role:   *scrapeRole,
		RQ:     *scrapeRq,
		Tier:   *scrapeTier,
	}

	var missing []string
	for _, required := range []struct{ flag, value string }{
		{"--input", tuple.Input},
		{"--region", tuple.Region},
		{"--role", tuple.Role},
		{"--rq", tuple.RQ},
		{"--tier", tuple.Tier},
	} {
		if required.value == "" {
			missing = append(missing, required.flag)
		}
	}
	if len(missing) > 0 {
		serviceutil.Fatal(
			"missing required flags for a single scrape",
			fmt.Errorf("%s", strings.Join(missing, ", ")),
		)
	}

	for field, value := range tuple.QueryParams() {
		_, err := domains.Restrict(field, value)
		if err != nil {
			serviceutil.Fatal("invalid flag value", err)
		}
	}
	return tuple
}

// restrictedDomains narrows the full domains by whichever per-field
// flags were provided.
func restrictedDomains(domains owrates.Domains) owrates.Domains {
	overrides := []struct{ field, value string }{
		{"input", *scrapeInput},
		{"map", *scrapeMap},
		{"region", *scrapeRegion},
		{"role", *scrapeRole},
		{"rq", *scrapeRq},
		{"tier", *scrapeTier},
	}
	for _, override := range overrides {
		if override.value == "" {
			continue
		}
		var err error
		domains, err = domains.Restrict(override.field, override.value)
		if err != nil {
			serviceutil.Fatal("invalid flag value", err)
		}
	}
	return domains
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--single --input <input> --region <region> --role <role> --rq <0|1> --tier <tier>]",
	Short: "Fetches hero statistics and writes one csv artifact per combination.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read config", err)
		}

		domains := owrates.DefaultDomains()
		var seq *owrates.Sequence
		if *scrapeSingle {
			seq = owrates.SingleSequence(singleTuple(domains))
		} else {
			seq = owrates.NewSequence(restrictedDomains(domains), *scrapeLimit)
		}

		var debugOutput restyutil.InstrumentOutput
		if *scrapeDebugHttp {
			debugOutput = restyutil.NewFilesystemOutput(".dev/resty/owrates")
		}

		client, err := owrates.NewClient(owrates.ClientOptions{
			BaseUrl:           cfg.BaseUrl,
			UserAgent:         cfg.UserAgent,
			Timeout:           time.Duration(cfg.TimeoutSeconds * float64(time.Second)),
			Delay:             time.Duration(*scrapeDelay * float64(time.Second)),
			MaxAttempts:       cfg.MaxAttempts,
			InitialBackoff:    time.Duration(cfg.InitialBackoffSeconds * float64(time.Second)),
			BackoffMultiplier: cfg.BackoffMultiplier,
			DebugOutput:       debugOutput,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize client", err)
		}

		err = os.MkdirAll(*scrapeOutputDir, 0755)
		if err != nil {
			serviceutil.Fatal("failed to create output directory", err)
		}

		database, err := sqliteutil.OpenDB(db.Schema, *scrapeDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		service := herostats.NewService(database, client, herostats.Options{
			OutputDir: *scrapeOutputDir,
			Workers:   *scrapeWorkers,
			Smtp: herostats.SmtpConfig{
				Server:       cfg.Notify.Smtp.Server,
				Port:         cfg.Notify.Smtp.Port,
				EmailAddress: cfg.Notify.Smtp.EmailAddress,
				Password:     cfg.Notify.Smtp.Password,
			},
			NotifyTo: cfg.Notify.To,
		})

		slog.Info(
			"scraping",
			"combinations", seq.Len(),
			"total", seq.Total(),
			"output_dir", *scrapeOutputDir,
		)

		t1 := time.Now()
		summary, err := service.Run(ctx, seq)
		t2 := time.Now()
		if err != nil && !errors.Is(err, context.Canceled) {
			serviceutil.Fatal("run failed", err)
		}

		renderSummary(summary)
		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds())

		err = service.Notify(context.WithoutCancel(ctx), summary)
		if err != nil {
			slog.Warn("failed to send notification email", "err", err)
		}
	},
}

func renderSummary(summary herostats.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Total", "Written", "Failed", "Duration"})
	t.AppendRow(table.Row{
		summary.RunID,
		summary.Total,
		summary.Written,
		summary.Failed,
		summary.Duration.Round(time.Millisecond),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
