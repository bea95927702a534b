package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-templatr/templatr/pkg/templatr"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <template.docx> <data-dir> <output-dir>",
		Short: "Fill a template once per data file in a directory",
		Long: `Fill a template once for every *.json file in data-dir. Each result is
written to output-dir under the data file's name with a .docx extension.
A failing data file does not stop the others.`,
		Args: cobra.ExactArgs(3),
		RunE: runBatch,
	}
	cmd.Flags().Int("jobs", 0, "max parallel fills (0=auto)")
	return cmd
}

type batchResult struct {
	data   string
	output string
	report *templatr.Report
	err    error
}

func runBatch(cmd *cobra.Command, args []string) error {
	templatePath, dataDir, outputDir := args[0], args[1], args[2]

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	files, err := listDataFiles(dataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no *.json files in %s", dataDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// one engine: fills share the cached template bytes
	engine := newEngine(cmd, config)
	defer engine.Close()

	results := fillAll(cmd.Context(), engine, templatePath, files, outputDir, jobs)

	p := newPrinter(cmd, cmd.OutOrStdout())
	failed := templatr.NewMultiError()
	for _, r := range results {
		if r.err != nil {
			p.failure("%s: %v", r.data, r.err)
			failed.Add(fmt.Errorf("%s: %w", r.data, r.err))
			continue
		}
		p.report(r.report)
		p.success("%s -> %s (%d replacements)", r.data, r.output, r.report.Replacements())
	}
	if failed.Len() > 0 {
		return fmt.Errorf("%d of %d fills failed: %w", failed.Len(), len(results), failed)
	}
	return nil
}

// fillAll fills the template once per data file with at most jobs fills in
// flight. Results are returned in files order.
func fillAll(ctx context.Context, engine *templatr.Engine, templatePath string, files []string, outputDir string, jobs int) []batchResult {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]batchResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, data := range files {
		g.Go(func() error {
			name := strings.TrimSuffix(filepath.Base(data), filepath.Ext(data)) + ".docx"
			results[i] = batchResult{data: data, output: filepath.Join(outputDir, name)}

			select {
			case <-gctx.Done():
				results[i].err = gctx.Err()
				return nil
			default:
			}

			// per-file failures are collected, not returned, so one bad
			// data file does not cancel the rest
			results[i].report, results[i].err = engine.FillFile(templatePath, data, results[i].output)
			return nil
		})
	}
	// workers never return errors
	_ = g.Wait()
	return results
}

// listDataFiles returns the *.json files directly in dir, sorted.
func listDataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
