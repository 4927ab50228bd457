package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blctm/gigagreen/pkg/cellkpi"
	"github.com/blctm/gigagreen/pkg/cellkpi/export"
	"github.com/blctm/gigagreen/pkg/cellkpi/models"
	"github.com/blctm/gigagreen/pkg/cellkpi/summary"
)

type summarizeFlags struct {
	outputPath string
	format     string
	sheet      string
	mergePath  string
	bom        bool
	keepGoing  bool
	pretty     bool
}

func newSummarizeCmd(root *rootFlags) *cobra.Command {
	flags := &summarizeFlags{}
	cmd := &cobra.Command{
		Use:   "summarize [input.xlsx...]",
		Short: "Compute the combined KPI summary of one or more workbooks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, root, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flags.format, "format", "csv", "Output format: csv, json, xlsx")
	cmd.Flags().StringVar(&flags.sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().StringVar(&flags.mergePath, "merge", "", "Existing summary CSV to append to")
	cmd.Flags().BoolVar(&flags.bom, "bom", false, "Prefix CSV output with a UTF-8 byte order mark")
	cmd.Flags().BoolVar(&flags.keepGoing, "keep-going", false, "Continue after unreadable files")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func runSummarize(cmd *cobra.Command, root *rootFlags, flags *summarizeFlags, args []string) error {
	switch flags.format {
	case "csv", "json", "xlsx":
	default:
		return fmt.Errorf("invalid format: %s (must be csv, json, or xlsx)", flags.format)
	}
	if flags.format == "xlsx" && flags.outputPath == "" {
		return errors.New("xlsx output needs --output")
	}

	cfg, logger, closer, err := root.load()
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := cfg.PipelineOptions(logger)
	if cmd.Flags().Changed("sheet") {
		opts.Sheet = flags.sheet
	}
	if flags.keepGoing {
		opts.KeepGoing = true
	}
	pipeline, err := cellkpi.NewPipeline(opts)
	if err != nil {
		return fmt.Errorf("invalid protocol: %w", err)
	}

	store := pipeline.NewStore()
	if flags.mergePath != "" {
		if err := seedStore(store, flags.mergePath); err != nil {
			return err
		}
	}

	sources := make([]cellkpi.Source, len(args))
	for i, path := range args {
		sources[i] = cellkpi.FileSource(path)
	}
	report, batchErr := pipeline.RunBatch(sources, store)

	if err := writeSummary(store.Combined(), flags); err != nil {
		return err
	}

	failures := report.Failures()
	for _, fe := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", fe)
	}
	if skipped := len(sources) - len(report.Outcomes); skipped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d file(s) not processed\n", skipped)
	}
	if batchErr != nil {
		return batchErr
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d file(s) failed", len(failures), len(sources))
	}
	return nil
}

// seedStore appends the records of a previously written summary.
func seedStore(store *summary.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open merge file: %w", err)
	}
	defer f.Close()

	prior, err := export.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to read merge file: %w", err)
	}
	for _, rec := range prior.Rows {
		if err := store.Append(rec); err != nil {
			return fmt.Errorf("failed to merge %s: %w", path, err)
		}
	}
	return nil
}

func writeSummary(t models.CombinedTable, flags *summarizeFlags) error {
	var buf bytes.Buffer
	var err error
	switch flags.format {
	case "json":
		var data []byte
		if data, err = export.ToJSON(t, flags.pretty); err == nil {
			buf.Write(data)
			buf.WriteByte('\n')
		}
	case "xlsx":
		err = export.WriteXLSX(&buf, t)
	default:
		err = export.WriteCSV(&buf, t, export.CSVOptions{BOMPrefix: flags.bom})
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if flags.outputPath == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(flags.outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
