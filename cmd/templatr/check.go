package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-templatr/templatr/pkg/templatr"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <template.docx> <data.json>",
		Short: "Report directives that would not fill cleanly",
		Long:  `Check a data file against a template without writing anything: missing or split markers, unknown types, invalid tables and unreadable images`,
		Args:  cobra.ExactArgs(2),
		RunE:  runCheck,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	templatePath, dataPath := args[0], args[1]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	engine := newEngine(cmd, config)
	defer engine.Close()

	directives, err := templatr.LoadDirectivesFile(dataPath, config.BaseDir)
	if err != nil {
		return err
	}
	result, err := engine.Check(templatePath, directives)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		p := newPrinter(cmd, cmd.OutOrStdout())
		p.issues(result)
		if result.Valid() {
			p.success("%d directives checked, %d warnings", result.Directives, result.Warnings())
		}
	}

	return result.Err()
}
