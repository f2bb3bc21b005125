package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/watch"
)

var (
	watchProcess string
	watchOutDir  string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Run a process on every PDF dropped into a folder",
	Long: `Watches a folder and runs a process on each PDF copied into it.
Result archives are saved as <document>_resultados_<process>.zip.

Invocations are throttled by watch.max_per_second. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProcess, "process", "p", "", "process to run (required)")
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", "", "directory for result archives (default: watched folder)")
	_ = watchCmd.MarkFlagRequired("process")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if processService == nil {
		return errors.New("process service not configured")
	}
	sess, err := requireSession(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if _, err := processService.Describe(ctx, sess, watchProcess); err != nil {
		return err
	}

	rate := 1.0
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			rate = settings.Watch.MaxPerSecond
		}
	}

	w := watch.New(processService, sess, watch.Config{
		Dir:          args[0],
		Process:      watchProcess,
		OutputDir:    watchOutDir,
		MaxPerSecond: rate,
		OnResult: func(res watch.Result) {
			name := filepath.Base(res.Path)
			switch {
			case res.Report == nil:
				cmd.PrintErrf("%s: %v\n", name, res.Err)
			case res.Err != nil:
				cmd.PrintErrf("%s: %s (%v)\n", name, res.Report.Message(), res.Err)
			case res.ArchivePath != "":
				cmd.Printf("%s: %s -> %s\n", name, res.Report.Message(), res.ArchivePath)
			default:
				cmd.Printf("%s: %s\n", name, res.Report.Message())
			}
		},
	})
	defer w.Close()

	cmd.Printf("Watching %s for %s (Ctrl+C to stop)\n", args[0], watchProcess)
	return w.Run(ctx)
}
