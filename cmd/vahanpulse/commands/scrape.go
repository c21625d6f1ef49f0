package commands

import (
	"log/slog"
	"time"
	"vahanpulse-backend/lib/browser"
	"vahanpulse-backend/lib/configutil"
	"vahanpulse-backend/lib/scrapers/vahan"
	"vahanpulse-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

type ScrapeConfig struct {
	PortalURL    string   `json:"portal_url"`
	Headless     *bool    `json:"headless"`
	States       []string `json:"states"`
	Years        []string `json:"years"`
	VehicleTypes []string `json:"vehicle_types"`
}

var scrapeOut *string
var scrapeSkipProbe *bool

func init() {
	scrapeOut = scrapeCmd.Flags().String("out", "vahan_data.csv", "The CSV file to write scraped rows to.")
	scrapeSkipProbe = scrapeCmd.Flags().Bool("skip-probe", false, "Skip the HTTP reachability check before launching the browser.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--out <path/to/output.csv>]",
	Short: "Scrapes registration tables for every configured filter combination.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := configutil.ReadConfig[ScrapeConfig]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if len(cfg.States) == 0 || len(cfg.Years) == 0 {
			slog.Error("config must list at least one state and one year")
			return
		}

		if !*scrapeSkipProbe {
			if err := vahan.NewProbe(cfg.PortalURL).Check(ctx); err != nil {
				serviceutil.Fatal("portal preflight failed", err)
			}
		}

		headless := true
		if cfg.Headless != nil {
			headless = *cfg.Headless
		}
		session, err := browser.NewSession(ctx, browser.Options{Headless: headless})
		if err != nil {
			serviceutil.Fatal("failed to launch browser", err)
		}
		defer session.Close()

		scraper := vahan.New(session, cfg.PortalURL)
		if err := scraper.OpenPage(ctx); err != nil {
			serviceutil.Fatal("failed to open dashboard", err)
		}

		dims := map[string][]string{
			vahan.ControlState: cfg.States,
			vahan.ControlYear:  cfg.Years,
		}
		order := []string{vahan.ControlState, vahan.ControlYear}
		if len(cfg.VehicleTypes) > 0 {
			dims[vahan.ControlVehicleType] = cfg.VehicleTypes
			order = append(order, vahan.ControlVehicleType)
		}
		combos := vahan.Combinations(dims, order)
		slog.Info("starting sweep", "combinations", len(combos))

		t1 := time.Now()
		merged, err := scraper.SweepCombinations(ctx, combos)
		if err != nil {
			serviceutil.Fatal("sweep aborted", err)
		}
		slog.Info("sweep complete", "rows", len(merged.Rows), "seconds", time.Since(t1).Seconds())

		if merged.IsEmpty() {
			slog.Error("no data scraped, nothing to write")
			return
		}
		if err := merged.WriteCSV(*scrapeOut); err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		slog.Info("wrote dataset", "path", *scrapeOut)
	},
}
