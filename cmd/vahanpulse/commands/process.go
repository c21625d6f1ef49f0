package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"vahanpulse-backend/lib/util/serviceutil"
	"vahanpulse-backend/services/analytics"

	"github.com/spf13/cobra"
)

var processOutDir *string

func init() {
	processOutDir = processCmd.Flags().String("out-dir", ".", "Directory to write cleaned and growth CSVs to.")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process <path/to/scraped.csv>",
	Short: "Runs the cleaning, growth and insight pipeline over a scraped dataset.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		svc := analytics.NewService()

		raw, err := svc.LoadCSV(args[0])
		if err != nil {
			serviceutil.Fatal("failed to load dataset", err)
		}
		result, err := svc.ProcessAll(ctx, raw)
		if err != nil {
			serviceutil.Fatal("pipeline failed", err)
		}
		slog.Info("pipeline complete",
			"records", len(result.Rows), "elapsed", result.Elapsed)

		cleanedPath := filepath.Join(*processOutDir, "vahan_cleaned.csv")
		if err := analytics.WriteCleanedCSV(result.Rows, cleanedPath); err != nil {
			serviceutil.Fatal("failed to write cleaned data", err)
		}
		growthPath := filepath.Join(*processOutDir, "vahan_growth.csv")
		if err := analytics.WriteGrowthCSV(result.Growth, growthPath); err != nil {
			serviceutil.Fatal("failed to write growth data", err)
		}
		slog.Info("wrote outputs", "cleaned", cleanedPath, "growth", growthPath)

		analytics.RenderReport(os.Stdout, result)
	},
}
