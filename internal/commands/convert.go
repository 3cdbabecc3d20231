package commands

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cpa005/internal/config"
	"github.com/cleared-dev/cpa005/internal/convert"
	"github.com/cleared-dev/cpa005/internal/model"
	"github.com/cleared-dev/cpa005/internal/runlog"
	"github.com/cleared-dev/cpa005/internal/source"
)

type convertFlags struct {
	mode         string
	outDir       string
	delimiter    string
	fileNumber   int
	creationDate string
	skipInvalid  bool
	importDir    string
}

func newConvertCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "convert [file...]",
		Short: "Convert payment spreadsheets to CPA-005 files",
		Long: `Convert reads CSV or XLSX payment sheets and writes one CPA-005 file per
input. With --import-dir every spreadsheet in the directory is converted and
moved to its processed/ subdirectory on success.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && f.importDir == "" {
				return fmt.Errorf("no input files (pass files or --import-dir)")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts, err := f.options(cmd, cfg)
			if err != nil {
				return err
			}
			return runConvert(cmd, cfg, opts, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "PAD (debit) or PDS (credit)")
	_ = cmd.MarkFlagRequired("mode")
	cmd.Flags().StringVarP(&f.outDir, "out-dir", "o", "", "output directory (default: next to each input)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", `record delimiter, Go escapes allowed (e.g. "\n"); "" for none`)
	cmd.Flags().IntVar(&f.fileNumber, "file-number", 0, "file creation number (1-9999)")
	cmd.Flags().StringVar(&f.creationDate, "creation-date", "", "file creation date YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&f.skipInvalid, "skip-invalid", false, "drop invalid rows with a warning instead of failing")
	cmd.Flags().StringVar(&f.importDir, "import-dir", "", "convert every spreadsheet in this directory")

	return cmd
}

// options merges config values with any flags given on the command line.
func (f convertFlags) options(cmd *cobra.Command, cfg *config.Config) (convert.Options, error) {
	mode, err := model.ParseMode(f.mode)
	if err != nil {
		return convert.Options{}, err
	}

	logger := log.New(cmd.ErrOrStderr(), "", 0)
	opts, err := cfg.ConvertOptions(mode, logger)
	if err != nil {
		return convert.Options{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		d, err := parseDelimiter(f.delimiter)
		if err != nil {
			return convert.Options{}, err
		}
		opts.Delimiter = d
	}
	if flags.Changed("file-number") {
		if f.fileNumber < 1 || f.fileNumber > 9999 {
			return convert.Options{}, fmt.Errorf("--file-number %d out of range 1-9999", f.fileNumber)
		}
		opts.FileNumber = f.fileNumber
	}
	if f.creationDate != "" {
		d, err := time.Parse("2006-01-02", f.creationDate)
		if err != nil {
			return convert.Options{}, fmt.Errorf("--creation-date: %w", err)
		}
		opts.CreationDate = d
	} else {
		opts.CreationDate = time.Now()
	}
	if f.skipInvalid {
		opts.InvalidRows = convert.PolicySkip
	}
	return opts, nil
}

// parseDelimiter interprets Go escape sequences so "\n\n" can be typed
// on a shell command line.
func parseDelimiter(s string) (string, error) {
	d, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
	if err != nil {
		return "", fmt.Errorf("--delimiter %q: %w", s, err)
	}
	return d, nil
}

func runConvert(cmd *cobra.Command, cfg *config.Config, opts convert.Options, f convertFlags, files []string) error {
	reg := source.DefaultRegistry()

	type job struct {
		path      string
		importDir string
	}
	var jobs []job
	for _, p := range files {
		jobs = append(jobs, job{path: p})
	}
	if f.importDir != "" {
		found, err := reg.Scan(f.importDir)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No spreadsheets found in %s\n", f.importDir)
		}
		for _, fi := range found {
			jobs = append(jobs, job{path: fi.Path, importDir: f.importDir})
		}
	}

	history := runlog.NewCSVStore(cfg.History.LogPath)
	var failed []error
	for _, j := range jobs {
		out := outputPath(j.path, f.outDir, cfg.Output.Extension)
		sum, err := convertFile(reg, j.path, out, opts)

		entry := runlog.NewEntry(time.Now(), j.path, out, string(opts.Mode), sum, err)
		if herr := history.Append(entry); herr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to write conversion log: %v\n", herr)
		}

		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %v\n", j.path, err)
			failed = append(failed, fmt.Errorf("%s: %w", j.path, err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s (%d records, total %s, %d skipped, %d rejected)\n",
			j.path, out, sum.Records, sum.Total.StringFixed(2), sum.Skipped, sum.Rejected)

		if j.importDir != "" {
			if err := source.MarkProcessed(j.importDir, filepath.Base(j.path)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d conversions failed: %w", len(failed), len(jobs), errors.Join(failed...))
	}
	return nil
}

// outputPath places <stem><ext> in outDir, or beside the input when
// outDir is empty.
func outputPath(input, outDir, ext string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ext
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}
	return filepath.Join(outDir, name)
}

// convertFile converts input and writes the result to output through a
// temporary file, so a failed run never leaves a partial output behind.
func convertFile(reg *source.Registry, input, output string, opts convert.Options) (convert.Summary, error) {
	sheet, err := reg.Load(input)
	if err != nil {
		return convert.Summary{}, err
	}
	res, err := convert.Convert(sheet, opts)
	if err != nil {
		return convert.Summary{}, err
	}
	if err := writeAtomic(output, res); err != nil {
		return convert.Summary{}, err
	}
	return res.Summary, nil
}

func writeAtomic(path string, res *convert.Result) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cpa005-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := res.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", convert.ErrSinkWrite, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming output: %w", err)
	}
	return nil
}
