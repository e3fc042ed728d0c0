package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/dataset"
	"github.com/wonny/quantengine/internal/pipeline"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score the universe and draft the per-profile rankings",
	Long: `Values and scores every instrument in the assets file, then drafts up to
target_per_profile selections for DEFENSIVE, MODERATE and BOLD in that order.
An instrument is drafted at most once across profiles.

The ranking is saved to Postgres (when DATABASE_URL is set) and published to
the Redis cache (when REDIS_ENABLED=true) unless --dry-run is given.

Example:
  go run ./cmd/quant rank --assets data/assets.csv
  go run ./cmd/quant rank --assets data/assets.csv --out ranking.csv --dry-run`,
	RunE: runRank,
}

var (
	rankAssets string
	rankOut    string
	rankJSON   bool
	rankDryRun bool
)

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&rankAssets, "assets", "", "instrument universe CSV")
	rankCmd.Flags().StringVar(&rankOut, "out", "", "also write the ranking as CSV to this path")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "print the run result as JSON")
	rankCmd.Flags().BoolVar(&rankDryRun, "dry-run", false, "skip persistence and cache")
	_ = rankCmd.MarkFlagRequired("assets")
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	assets, err := dataset.LoadAssets(rankAssets)
	if err != nil {
		return err
	}

	result, err := a.orchestrator().Run(ctx, pipeline.RunConfig{
		ConfigHash: a.engineHash,
		DryRun:     rankDryRun,
	}, assets, a.engine.Macro)
	if err != nil {
		return err
	}

	if rankOut != "" {
		f, err := os.Create(rankOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", rankOut, err)
		}
		defer f.Close()
		if err := dataset.WriteRanking(f, result.Ranking.Items); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if rankJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Ranking)
	}

	printHeader(out, "Ranking "+result.Date.Format("2006-01-02"))
	printKeyValue(out, "Run ID", result.RunID)
	printKeyValue(out, "Universe", fmt.Sprintf("%d (%d scored, %d excluded)", len(assets), len(result.Scored), len(result.Excluded)))
	printKeyValue(out, "Stages", fmt.Sprint(result.CompletedStages))
	printKeyValue(out, "Duration", result.Duration.String())

	for _, profile := range contracts.Profiles {
		items := result.Ranking.ByProfile(profile)
		fmt.Fprintln(out)
		printSeparator(out)
		fmt.Fprintf(out, "  %s (%d)\n", profile, len(items))
		printSeparator(out)
		if len(items) == 0 {
			printWarning(out, "no candidate above the minimum score")
			continue
		}

		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{
				fmt.Sprint(it.Position),
				it.Ticker,
				it.Sector,
				fmt.Sprintf("%.1f", it.Score),
				string(it.Action),
				fmt.Sprintf("%.2f", it.Price),
				fmt.Sprintf("%.2f", it.TargetPrice),
			})
		}
		printTable(out, []string{"#", "Ticker", "Sector", "Score", "Action", "Price", "Target"}, rows)
	}

	fmt.Fprintln(out)
	printSuccess(out, fmt.Sprintf("%d items drafted", len(result.Ranking.Items)))
	return nil
}
