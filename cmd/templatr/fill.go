package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill <template.docx> <data.json> <output.docx>",
		Short: "Fill a template with the directives of a data file",
		Long: `Fill a template with the directives of a data file and write the result.
The output is only written when every directive applied without error.`,
		Args: cobra.ExactArgs(3),
		RunE: runFill,
	}
	cmd.Flags().String("base-dir", "", "directory for relative image paths (default: the data file's directory)")
	return cmd
}

func runFill(cmd *cobra.Command, args []string) error {
	templatePath, dataPath, outputPath := args[0], args[1], args[2]

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	baseDir, err := cmd.Flags().GetString("base-dir")
	if err != nil {
		return fmt.Errorf("failed to get base-dir flag: %w", err)
	}
	if baseDir != "" {
		config.BaseDir = baseDir
	}

	engine := newEngine(cmd, config)
	defer engine.Close()

	p := newPrinter(cmd, cmd.OutOrStdout())
	report, err := engine.FillFile(templatePath, dataPath, outputPath)
	p.report(report)
	if err != nil {
		return err
	}

	p.success("%s written (%d directives, %d replacements)", outputPath, len(report.Outcomes), report.Replacements())
	return nil
}
