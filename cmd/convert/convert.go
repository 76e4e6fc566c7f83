// Package convert wires the Request Orchestrator (internal/convert) into
// a standalone subcommand: run one subscription conversion from the
// command line without standing up the HTTP server.
package convert

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relayforge/subconverter/internal/convert"
	"github.com/relayforge/subconverter/internal/customlog"
	"github.com/relayforge/subconverter/internal/settings"
)

// convertCmdConfig holds the configuration for the convert command.
type convertCmdConfig struct {
	urls       []string
	target     string
	configFile string
	include    []string
	exclude    []string
	groups     []string
	rulesets   []string
	outputFile string
	sort       bool
	appendType bool
	strict     bool
}

// ConvertCmd represents the convert command.
var ConvertCmd = newConvertCommand()

func newConvertCommand() *cobra.Command {
	cfg := &convertCmdConfig{}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Converts one or more subscriptions into a target client document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&cfg.urls, "url", "u", nil, "Subscription URL, inline node URI, or local file path (repeatable)")
	flags.StringVarP(&cfg.target, "target", "t", "mixed", "Target format: clash, surge, singbox, quan, quanx, loon, mellow, ssd, sssub, mixed")
	flags.StringVarP(&cfg.configFile, "config", "c", "", "External config document overlaying settings for this run")
	flags.StringSliceVar(&cfg.include, "include", nil, "Remark include regex (repeatable)")
	flags.StringSliceVar(&cfg.exclude, "exclude", nil, "Remark exclude regex (repeatable)")
	flags.StringSliceVar(&cfg.groups, "group", nil, "custom_proxy_group line, backtick-separated (repeatable)")
	flags.StringSliceVar(&cfg.rulesets, "ruleset", nil, "target,url-or-path ruleset reference (repeatable)")
	flags.StringVarP(&cfg.outputFile, "out", "o", "-", "Output file; - means stdout")
	flags.BoolVar(&cfg.sort, "sort", false, "Sort nodes by remark")
	flags.BoolVar(&cfg.appendType, "append-type", false, "Append [KIND] suffix to each remark")
	flags.BoolVar(&cfg.strict, "strict", false, "Abort on the first subscription fetch failure")

	return cmd
}

func runConvert(cfg *convertCmdConfig) error {
	if len(cfg.urls) == 0 {
		return fmt.Errorf("at least one --url is required")
	}

	static := settings.Default()
	orchestrator := convert.New(static)

	req := &settings.Request{
		Target:     cfg.target,
		URLs:       cfg.urls,
		Config:     cfg.configFile,
		Include:    cfg.include,
		Exclude:    cfg.exclude,
		Groups:     cfg.groups,
		Ruleset:    cfg.rulesets,
		Sort:       boolPtr(cfg.sort),
		AppendType: boolPtr(cfg.appendType),
		Strict:     boolPtr(cfg.strict),
	}

	out, err := orchestrator.Convert(context.Background(), req)
	if err != nil {
		return fmt.Errorf("convert failed: %w", err)
	}

	for _, w := range out.Warnings {
		customlog.Printf(customlog.Warning, "%s\n", w.String())
	}
	if out.Skipped > 0 {
		customlog.Printf(customlog.Info, "%d node(s) skipped: unsupported by target %q\n", out.Skipped, cfg.target)
	}

	if cfg.outputFile == "-" {
		fmt.Println(out.Document)
		return nil
	}
	if err := os.WriteFile(cfg.outputFile, []byte(strings.TrimRight(out.Document, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	customlog.Printf(customlog.Success, "wrote %s\n", cfg.outputFile)
	return nil
}

func boolPtr(b bool) *bool { return &b }
