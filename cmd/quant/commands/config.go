package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/quantengine/internal/engineconfig"
	"github.com/wonny/quantengine/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the engine configuration",
}

var (
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective engine config with its hash",
		Long: `Prints the engine config after defaults are applied, the hash stored
with every ranking, and any warnings.

Example:
  go run ./cmd/quant config show --engine-config configs/engine.yaml`,
		RunE: showConfig,
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate an engine config file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateConfig,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	engineCfg, err := loadEngineConfig(cfg)
	if err != nil {
		return err
	}

	data, err := engineconfig.YAML(engineCfg)
	if err != nil {
		return fmt.Errorf("render engine config: %w", err)
	}
	hash, err := engineconfig.Hash(engineCfg)
	if err != nil {
		return fmt.Errorf("hash engine config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, string(data))
	printSeparator(out)
	printKeyValue(out, "Hash", hash)
	printWarnings(cmd, engineCfg)
	return nil
}

func validateConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	engineCfg, _, err := engineconfig.Load(args[0])
	if err != nil {
		var verr engineconfig.ValidationError
		if errors.As(err, &verr) {
			printKeyValue(out, "Field", verr.Field)
			printKeyValue(out, "Problem", verr.Message)
		}
		return fmt.Errorf("%s is invalid: %w", args[0], err)
	}

	printWarnings(cmd, engineCfg)
	printSuccess(out, fmt.Sprintf("%s is valid", args[0]))
	return nil
}

func printWarnings(cmd *cobra.Command, cfg *engineconfig.Config) {
	out := cmd.OutOrStdout()
	for _, w := range engineconfig.Warn(cfg) {
		printWarning(out, fmt.Sprintf("%s: %s", w.Code, w.Message))
	}
}
