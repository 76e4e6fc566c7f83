// Package ruleset exposes the Ruleset Engine (internal/ruleset) as a
// standalone subcommand, useful for debugging a ruleset reference
// outside a full conversion run.
package ruleset

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relayforge/subconverter/internal/customlog"
	"github.com/relayforge/subconverter/internal/fetch"
	"github.com/relayforge/subconverter/internal/ruleset"
)

type rulesetCmdConfig struct {
	target  string
	url     string
	declare string
}

// RulesetCmd represents the ruleset command.
var RulesetCmd = newRulesetCommand()

func newRulesetCommand() *cobra.Command {
	cfg := &rulesetCmdConfig{}
	cmd := &cobra.Command{
		Use:   "ruleset",
		Short: "Fetches and classifies a single ruleset reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuleset(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.url, "url", "u", "", "Ruleset URL or local path")
	flags.StringVarP(&cfg.target, "group", "g", "Proxy", "Target group the ruleset feeds")
	flags.StringVarP(&cfg.declare, "type", "T", "classical", "Declared type: classical, domain, ipcidr, script")

	return cmd
}

func runRuleset(cfg *rulesetCmdConfig) error {
	if cfg.url == "" {
		return fmt.Errorf("--url is required")
	}

	engine := ruleset.NewEngine(6 * time.Hour)
	refs := []ruleset.Reference{
		{URL: cfg.url, TargetGroup: cfg.target, DeclaredType: ruleset.DeclaredType(cfg.declare)},
	}

	resolved, errs := engine.Resolve(context.Background(), refs, fetch.DefaultOptions())
	for _, e := range errs {
		customlog.Printf(customlog.Failure, "%s\n", e.Error())
	}
	for _, r := range resolved {
		if r.IsScript {
			customlog.Printf(customlog.Info, "%s: opaque script (%d bytes)\n", r.TargetGroup, len(r.Script))
			continue
		}
		customlog.Printf(customlog.Success, "%s: %d match lines\n", r.TargetGroup, len(r.Lines))
		for _, line := range r.Lines {
			fmt.Println(line)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d ruleset reference(s) failed", len(errs))
	}
	return nil
}
