package analytics

import (
	"fmt"
	"strconv"
	"time"
	"vahanpulse-backend/lib/tabular"

	"github.com/mazen160/go-random"
)

// Sample data generation for offline pipeline runs. The generated
// table has the same shape a real sweep produces: grouped count
// columns plus Filter_* tags and a scrape date.

var sampleStates = []string{
	"Karnataka(29)", "Maharashtra(52)", "Delhi(7)",
	"Tamil Nadu(38)", "Gujarat(37)", "Uttar Pradesh(78)",
}

var sampleClasses = []struct {
	name string
	base int
}{
	{"MOTOR CYCLE/SCOOTER", 40000},
	{"MOPED", 6000},
	{"AUTO RICKSHAW", 9000},
	{"E-RICKSHAW(P)", 3000},
	{"MOTOR CAR", 25000},
	{"GOODS CARRIER", 7000},
	{"BUS", 1200},
}

// GenerateSample builds a synthetic registration table covering the
// given years. Volumes drift upward year over year with random jitter
// so the growth pipeline has something non-trivial to chew on.
func GenerateSample(years []int) (tabular.Table, error) {
	out := tabular.Table{
		Headers: []string{
			"S No", "Vehicle Class", "TOTAL",
			"Filter_State", "Filter_Year", "Scraped_Date",
		},
	}
	scrapeDate := time.Now().Format("2006-01-02")

	for _, state := range sampleStates {
		serial := 0
		for yi, year := range years {
			for _, class := range sampleClasses {
				serial++
				// Base volume compounds ~8% per elapsed year, then
				// jitters within +/-20%.
				base := class.base
				for i := 0; i < yi; i++ {
					base = base * 108 / 100
				}
				jitter, err := random.IntRange(-base/5, base/5+1)
				if err != nil {
					return tabular.Table{}, fmt.Errorf("generate jitter: %w", err)
				}
				total := base + jitter
				if total < 0 {
					total = 0
				}
				out.Rows = append(out.Rows, []string{
					strconv.Itoa(serial),
					class.name,
					strconv.Itoa(total),
					state,
					strconv.Itoa(year),
					scrapeDate,
				})
			}
		}
	}
	return out, nil
}
