package commands

import (
	"os"
	"vahanpulse-backend/lib/browser"
	"vahanpulse-backend/lib/configutil"
	"vahanpulse-backend/lib/scrapers/vahan"
	"vahanpulse-backend/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dropdownsCmd)
}

var dropdownsCmd = &cobra.Command{
	Use:   "dropdowns",
	Short: "Prints the options of every filter dropdown on the dashboard.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := configutil.ReadConfig[ScrapeConfig]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
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

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Control", "Option"})

		for label, options := range scraper.AllOptions(ctx) {
			for _, option := range options {
				t.AppendRow(table.Row{label, option})
			}
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
