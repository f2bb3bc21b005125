package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/results"
	"github.com/custodia-labs/procdesk/internal/core/domain"
)

var runOutDir string

var processCmd = &cobra.Command{
	Use:     "process",
	Aliases: []string{"proceso"},
	Short:   "List and run document processes",
}

var processListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered processes",
	Args:  cobra.NoArgs,
	RunE:  runProcessList,
}

var processDescribeCmd = &cobra.Command{
	Use:   "describe [name]",
	Short: "Show what a process does",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcessDescribe,
}

var processRunCmd = &cobra.Command{
	Use:   "run [name] [file]",
	Short: "Run a process on a document",
	Long: `Runs a process on a document and saves the result archive
(resultados_<name>.zip) to the output directory.

The invocation is recorded in the usage ledger whether it succeeds or not.
Each process keeps one output tree that is never cleared, so the archive
carries the deliverables of earlier runs too.`,
	Args: cobra.ExactArgs(2),
	RunE: runProcessRun,
}

func init() {
	processRunCmd.Flags().StringVarP(&runOutDir, "out", "o", ".", "directory for the result archive")
	processCmd.AddCommand(processListCmd)
	processCmd.AddCommand(processDescribeCmd)
	processCmd.AddCommand(processRunCmd)
	rootCmd.AddCommand(processCmd)
}

func runProcessList(cmd *cobra.Command, _ []string) error {
	if processService == nil {
		return errors.New("process service not configured")
	}
	sess, err := requireSession(cmd)
	if err != nil {
		return err
	}

	infos, err := processService.List(commandContext(cmd), sess)
	if err != nil {
		return fmt.Errorf("listing processes: %w", err)
	}

	if len(infos) == 0 {
		cmd.Println("No processes registered.")
		return nil
	}

	for _, info := range infos {
		cmd.Printf("%-20s %-9s %s\n", info.Name, info.Source, firstLine(info.Description))
	}
	return nil
}

func runProcessDescribe(cmd *cobra.Command, args []string) error {
	if processService == nil {
		return errors.New("process service not configured")
	}
	sess, err := requireSession(cmd)
	if err != nil {
		return err
	}

	desc, err := processService.Describe(commandContext(cmd), sess, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("unknown process %q", args[0])
		}
		return err
	}

	cmd.Println(desc)
	return nil
}

func runProcessRun(cmd *cobra.Command, args []string) error {
	if processService == nil {
		return errors.New("process service not configured")
	}
	name, path := args[0], args[1]

	sess, err := requireSession(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	report, err := processService.Invoke(commandContext(cmd), sess, domain.InvocationRequest{
		Process:  name,
		Filename: filepath.Base(path),
		Content:  f,
		User:     operatorName(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("unknown process %q", name)
		}
		return err
	}

	cmd.Println(report.Message())
	printSummary(cmd, report.Result.Summary)

	if report.Archive != nil {
		archivePath, err := results.Save(runOutDir, report.Archive)
		if err != nil {
			return err
		}
		cmd.Printf("Archivo de resultados: %s (%d entradas)\n", archivePath, len(report.Archive.Entries))
		if report.Archive.Warnings != nil {
			cmd.PrintErrf("Aviso: %v\n", report.Archive.Warnings)
		}
	}

	if report.LedgerErr != nil {
		cmd.PrintErrf("Aviso: no se pudo registrar la operación: %v\n", report.LedgerErr)
	}

	if report.Err != nil {
		return fmt.Errorf("process %s failed", name)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
