package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/kabar-api/kabar-api/internal/db"
	"github.com/kabar-api/kabar-api/internal/jobs"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/spf13/cobra"
)

var days int

var rootCmd = &cobra.Command{
	Use:   "check-region LAT LON",
	Short: "Resolve a point against the boundary file",
	Long: `check-region prints the province and district the point falls in.
With a database configured it also lists how many stored fire detections
share that district over the last --days days.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().IntVar(&days, "days", 7, "lookback for the detection count")
}

func run(cmd *cobra.Command, args []string) error {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("longitude: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: "warn", Format: "console"})

	idx, err := jobs.LoadRegions(cfg.Regions)
	if err != nil {
		return err
	}
	if idx == nil {
		return fmt.Errorf("set regions.boundaries_path (or BOUNDARIES_PATH)")
	}

	region, ok := idx.Lookup(lat, lon)
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(out, "%.5f, %.5f is outside every boundary\n", lat, lon)
		return nil
	}
	fmt.Fprintf(out, "Province: %s\nDistrict: %s\n", region.Province, region.District)

	if cfg.RequireDatabase() != nil {
		return nil
	}
	d, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(d)

	var count int64
	since := time.Now().AddDate(0, 0, -days).Format(time.DateOnly)
	err = d.Raw(`
		SELECT COUNT(*)
		FROM viirs_snpp_raw
		WHERE province = ? AND district = ? AND acq_date > ?`,
		region.Province, region.District, since).Scan(&count).Error
	if err != nil {
		return fmt.Errorf("count detections: %w", err)
	}
	fmt.Fprintf(out, "Detections in the last %d days: %d\n", days, count)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
