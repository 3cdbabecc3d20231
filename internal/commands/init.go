package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cpa005/internal/config"
	"github.com/cleared-dev/cpa005/internal/convert"
	"github.com/cleared-dev/cpa005/internal/model"
)

// TemplateFile is the sample input written by init.
const TemplateFile = "template.csv"

type templateValues struct {
	ClientName      string
	ClientNumber    string
	Centre          int
	Currency        string
	TransactionCode string
}

func newInitCommand() *cobra.Command {
	var force bool
	var tv templateValues

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a working directory with a config and input template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if !model.ProcessingCentre(tv.Centre).Valid() {
				return fmt.Errorf("unknown processing centre %d", tv.Centre)
			}
			cur, err := model.ParseCurrency(tv.Currency)
			if err != nil {
				return err
			}
			tv.Currency = string(cur)

			return runInit(absDir, tv, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	cmd.Flags().StringVar(&tv.ClientName, "client-name", "", "originator name for the template")
	cmd.Flags().StringVar(&tv.ClientNumber, "client-number", "", "10-digit originator number for the template")
	cmd.Flags().IntVar(&tv.Centre, "centre", int(model.CentreToronto), "processing centre code")
	cmd.Flags().StringVar(&tv.Currency, "currency", string(model.CurrencyCAD), "CAD or USD")
	cmd.Flags().StringVar(&tv.TransactionCode, "transaction-code", "", "3-character CPA transaction code")

	return cmd
}

func runInit(dir string, tv templateValues, force bool) error {
	dirs := []string{
		"logs",
		"out",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}
	if err := config.Save(cfgPath, config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := writeTemplate(filepath.Join(dir, TemplateFile), tv); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}

	fmt.Printf("Initialized CPA-005 workspace at %s\n", dir)
	return nil
}

// writeTemplate writes the metadata block and column header expected by
// the converter.
func writeTemplate(path string, tv templateValues) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := [][]string{
		{convert.LabelClientName, tv.ClientName},
		{convert.LabelClientNumber, tv.ClientNumber},
		{convert.LabelProcessingCentre, strconv.Itoa(tv.Centre)},
		{convert.LabelCurrencyCode, tv.Currency},
		{convert.LabelPaymentDate, "YYYY/MM/DD"},
		{convert.LabelTransactionCode, tv.TransactionCode},
		convert.ColumnHeaders,
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}
