package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/quantengine/internal/dataset"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the universe for tactical signals",
	Long: `Looks for RSI_OVERSOLD, DEEP_VALUE and SUPPORT_ZONE signals on every liquid
instrument and stores each new one. A signal of the same ticker and type
inside the dedup window is counted as a duplicate and not stored again.

Example:
  go run ./cmd/quant scan --assets data/assets.csv --prices data/prices.csv`,
	RunE: runScan,
}

var (
	scanAssets string
	scanPrices string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanAssets, "assets", "", "instrument universe CSV")
	scanCmd.Flags().StringVar(&scanPrices, "prices", "", "price history CSV (date,ticker,close)")
	_ = scanCmd.MarkFlagRequired("assets")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	source := dataset.Files{AssetsPath: scanAssets, PricesPath: scanPrices}
	assets, err := source.Assets(ctx)
	if err != nil {
		return err
	}
	history, err := source.Prices(ctx)
	if err != nil {
		return err
	}

	result := a.scanner().Scan(ctx, history.ScanInputs(assets))
	if !result.Success {
		return fmt.Errorf("scan failed: %s", result.Error)
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Signal scan")
	printKeyValue(out, "Analyzed", fmt.Sprint(result.Analyzed))
	printKeyValue(out, "Created", fmt.Sprint(result.Created))
	printKeyValue(out, "Duplicates", fmt.Sprint(result.Duplicates))
	printKeyValue(out, "Failed", fmt.Sprint(result.Failed))
	printKeyValue(out, "Bad history", fmt.Sprint(result.BadHistory))

	if len(result.Signals) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(result.Signals))
		for _, sig := range result.Signals {
			rows = append(rows, []string{sig.Ticker, string(sig.Type), string(sig.Profile), fmt.Sprintf("%.2f", sig.PriceAtSignal), sig.Message})
		}
		printTable(out, []string{"Ticker", "Type", "Profile", "Price", "Message"}, rows)
	}

	fmt.Fprintln(out)
	printSuccess(out, "Scan completed")
	return nil
}
