package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Resolve signals that reached their horizon",
	Long: `Checks every ACTIVE signal created between the safety window and the
horizon (default 30 and 7 days ago) against its latest price, and marks it
HIT, MISS or NEUTRAL. Signals whose quote is missing stay ACTIVE for the next
run.

Quotes come from the last close per ticker in the prices file, or from the
quote service at QUOTE_API_URL when --prices is not given.

Example:
  go run ./cmd/quant audit --prices data/prices.csv
  QUOTE_API_URL=http://quotes:8080 go run ./cmd/quant audit`,
	RunE: runAudit,
}

var auditPrices string

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVar(&auditPrices, "prices", "", "price history CSV used as the quote source")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	quotes, err := a.quoteSource(auditPrices)
	if err != nil {
		return err
	}

	result := a.auditor(quotes).Audit(ctx)
	if !result.Success {
		return fmt.Errorf("audit failed: %s", result.Error)
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Signal audit")
	printKeyValue(out, "Checked", fmt.Sprint(result.Checked))
	printKeyValue(out, "Hits", fmt.Sprint(result.Hits))
	printKeyValue(out, "Misses", fmt.Sprint(result.Misses))
	printKeyValue(out, "Neutrals", fmt.Sprint(result.Neutrals))
	printKeyValue(out, "Quote failures", fmt.Sprint(result.Failed))
	printKeyValue(out, "Hit rate", pct(result.HitRate()*100))

	if len(result.Audited) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(result.Audited))
		for _, sig := range result.Audited {
			rows = append(rows, []string{sig.Ticker, string(sig.Type), string(sig.Status), fmt.Sprintf("%.2f", sig.PriceAtSignal), fmt.Sprintf("%.2f", sig.FinalPrice), pct(sig.ChangePct)})
		}
		printTable(out, []string{"Ticker", "Type", "Status", "Entry", "Final", "Change"}, rows)
	}

	fmt.Fprintln(out)
	printSuccess(out, "Audit completed")
	return nil
}
