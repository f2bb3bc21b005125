package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

var (
	ledgerJSON    bool
	ledgerProcess string
	ledgerLimit   int
	ledgerOutput  string
	ledgerYes     bool
)

var ledgerCmd = &cobra.Command{
	Use:     "ledger",
	Aliases: []string{"registros"},
	Short:   "Inspect the usage ledger",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show ledger records",
	Args:  cobra.NoArgs,
	RunE:  runLedgerShow,
}

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger as CSV",
	Args:  cobra.NoArgs,
	RunE:  runLedgerExport,
}

var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every ledger record",
	Long:  `Deletes the whole usage ledger. This cannot be undone, so --yes is required.`,
	Args:  cobra.NoArgs,
	RunE:  runLedgerClear,
}

// ledgerRecordJSON is the JSON shape of one record, keyed like the CSV header.
type ledgerRecordJSON struct {
	Fecha     string `json:"fecha"`
	Usuario   string `json:"usuario"`
	Proceso   string `json:"proceso"`
	Archivo   string `json:"archivo"`
	Resultado string `json:"resultado"`
}

func init() {
	ledgerShowCmd.Flags().BoolVar(&ledgerJSON, "json", false, "output records as JSON")
	ledgerShowCmd.Flags().StringVarP(&ledgerProcess, "process", "p", "", "only records of this process")
	ledgerShowCmd.Flags().IntVarP(&ledgerLimit, "limit", "n", 0, "only the most recent N records")
	ledgerExportCmd.Flags().StringVarP(&ledgerOutput, "output", "o", "", "output file (default stdout)")
	ledgerClearCmd.Flags().BoolVarP(&ledgerYes, "yes", "y", false, "confirm deletion")

	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)
	ledgerCmd.AddCommand(ledgerClearCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func runLedgerShow(cmd *cobra.Command, _ []string) error {
	if ledgerService == nil {
		return errors.New("ledger service not configured")
	}
	sess, err := requireSession(cmd)
	if err != nil {
		return err
	}

	records, err := ledgerService.List(commandContext(cmd), sess)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}
	records = filterRecords(records, ledgerProcess, ledgerLimit)

	if ledgerJSON {
		return outputLedgerJSON(cmd, records)
	}
	return outputLedgerTable(cmd, records)
}

// filterRecords keeps records of process (all when empty) and then the
// last limit of them (all when limit <= 0).
func filterRecords(records []domain.LedgerRecord, process string, limit int) []domain.LedgerRecord {
	if process != "" {
		filtered := make([]domain.LedgerRecord, 0, len(records))
		for _, rec := range records {
			if rec.Process == process {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records
}

func outputLedgerJSON(cmd *cobra.Command, records []domain.LedgerRecord) error {
	out := make([]ledgerRecordJSON, len(records))
	for i, rec := range records {
		row := rec.Row()
		out[i] = ledgerRecordJSON{
			Fecha:     row[0],
			Usuario:   row[1],
			Proceso:   row[2],
			Archivo:   row[3],
			Resultado: row[4],
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputLedgerTable(cmd *cobra.Command, records []domain.LedgerRecord) error {
	if len(records) == 0 {
		cmd.Println("No records.")
		return nil
	}

	cmd.Printf("%-19s  %-12s  %-16s  %-24s  %s\n", domain.LedgerColumns[0], domain.LedgerColumns[1],
		domain.LedgerColumns[2], domain.LedgerColumns[3], domain.LedgerColumns[4])
	for _, rec := range records {
		row := rec.Row()
		cmd.Printf("%-19s  %-12s  %-16s  %-24s  %s\n", row[0], row[1], row[2], row[3], row[4])
	}
	return nil
}

func runLedgerExport(cmd *cobra.Command, _ []string) error {
	if ledgerService == nil {
		return errors.New("ledger service not configured")
	}
	sess, err := requireSession(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if ledgerOutput != "" {
		f, err := os.Create(ledgerOutput)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := ledgerService.Export(commandContext(cmd), sess, w); err != nil {
		return fmt.Errorf("exporting ledger: %w", err)
	}
	if ledgerOutput != "" {
		cmd.PrintErrf("Ledger exported to %s\n", ledgerOutput)
	}
	return nil
}

func runLedgerClear(cmd *cobra.Command, _ []string) error {
	if ledgerService == nil {
		return errors.New("ledger service not configured")
	}
	sess, err := requireSession(cmd)
	if err != nil {
		return err
	}

	if !ledgerYes {
		return errors.New("clearing the ledger cannot be undone; pass --yes to confirm")
	}

	if err := ledgerService.Clear(commandContext(cmd), sess); err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}
	cmd.Println("Registros borrados.")
	return nil
}
