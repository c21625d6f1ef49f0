package commands

import (
	"log/slog"
	"vahanpulse-backend/lib/configutil"
	"vahanpulse-backend/lib/scrapers/vahan"
	"vahanpulse-backend/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Checks that the portal is reachable and still serves the report view.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[ScrapeConfig]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if err := vahan.NewProbe(cfg.PortalURL).Check(cmd.Context()); err != nil {
			serviceutil.Fatal("portal preflight failed", err)
		}
		slog.Info("portal reachable and serving the report view")
	},
}
