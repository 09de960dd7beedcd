package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ppiankov/riskline/internal/config"
	"github.com/ppiankov/riskline/internal/engine"
	"github.com/ppiankov/riskline/internal/model"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect rule, profile and override documents",
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the configured documents",
	Long: `Check loads the rule book, profiles and global overrides exactly as score
would (without the cache fallback) and reports problems.

Example:
  riskline rules check
  riskline rules check --rules ./rules.yaml --profiles ./profiles.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)

		loader := config.NewLoader(cfg.Documents, newLogger(cfg).Named("config"))
		bundle, err := loader.Load(context.Background())
		if err != nil {
			return err
		}
		if err := engine.Validate(bundle); err != nil {
			return err
		}

		printBundleReport(cmd.OutOrStdout(), bundle)
		return nil
	},
}

var rulesDefaultsCmd = &cobra.Command{
	Use:       "defaults <rules|profiles|overrides>",
	Short:     "Print an embedded default document",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{config.KindRules, config.KindProfiles, config.KindOverrides},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.DefaultDocument(args[0])
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rulesCmd.AddCommand(rulesDefaultsCmd)

	rulesCheckCmd.Flags().StringVar(&rulesPath, "rules", "", "rule book (default: embedded)")
	rulesCheckCmd.Flags().StringVar(&profilesPath, "profiles", "", "finding profiles (default: embedded)")
	rulesCheckCmd.Flags().StringVar(&overridesPath, "overrides", "", "global overrides (default: embedded)")
}

// printBundleReport prints counts and findings that will score with default profiles
func printBundleReport(out io.Writer, bundle *model.Bundle) {
	rules := bundle.Rules
	fmt.Fprintf(out, "✓ Rule book version %d\n", rules.Version)
	fmt.Fprintf(out, "  Rules:          %d\n", len(rules.Rules))
	fmt.Fprintf(out, "  Findings:       %d\n", len(rules.Findings))
	fmt.Fprintf(out, "  Matrix entries: %d\n", len(rules.Matrix))
	fmt.Fprintf(out, "  Hard overrides: %d\n", len(rules.HardOverrides))
	fmt.Fprintf(out, "✓ Profiles:       %d\n", len(bundle.Profiles))
	fmt.Fprintf(out, "✓ Overrides:      %d\n", len(bundle.GlobalOverrides))

	missing := unprofiledFindings(bundle)
	if len(missing) > 0 {
		fmt.Fprintf(out, "\nFindings without a profile (scored with defaults):\n")
		for _, id := range missing {
			fmt.Fprintf(out, "  - %s\n", id)
		}
	}
}

func unprofiledFindings(bundle *model.Bundle) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, r := range bundle.Rules.Rules {
		if seen[r.FindingID] {
			continue
		}
		seen[r.FindingID] = true
		if _, ok := bundle.Profiles[r.FindingID]; !ok {
			missing = append(missing, r.FindingID)
		}
	}
	sort.Strings(missing)
	return missing
}
