package commands

import (
	"log/slog"
	"strconv"
	"vahanpulse-backend/lib/util/serviceutil"
	"vahanpulse-backend/services/analytics"

	"github.com/spf13/cobra"
)

var sampleOut *string
var sampleYears *[]string

func init() {
	sampleOut = sampleCmd.Flags().String("out", "vahan_sample.csv", "The CSV file to write sample data to.")
	sampleYears = sampleCmd.Flags().StringSlice("years", []string{"2021", "2022", "2023"}, "Years to generate data for.")
	rootCmd.AddCommand(sampleCmd)
}

var sampleCmd = &cobra.Command{
	Use:   "sample [--out <path/to/output.csv>]",
	Short: "Generates a synthetic dataset for offline pipeline runs.",
	Run: func(cmd *cobra.Command, args []string) {
		years := make([]int, 0, len(*sampleYears))
		for _, label := range *sampleYears {
			year, err := strconv.Atoi(label)
			if err != nil {
				serviceutil.Fatal("invalid year "+label, err)
			}
			years = append(years, year)
		}

		data, err := analytics.GenerateSample(years)
		if err != nil {
			serviceutil.Fatal("failed to generate sample data", err)
		}
		if err := data.WriteCSV(*sampleOut); err != nil {
			serviceutil.Fatal("failed to write sample data", err)
		}
		slog.Info("wrote sample dataset", "path", *sampleOut, "rows", len(data.Rows))
	},
}
