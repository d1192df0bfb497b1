package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/recookio/recook/pkg/batch"
	"github.com/recookio/recook/pkg/config"
	"github.com/recookio/recook/pkg/cooker"
	"github.com/recookio/recook/pkg/feed"
	"github.com/recookio/recook/pkg/logging"
	"github.com/recookio/recook/pkg/store"
	"github.com/recookio/recook/pkg/ui"
	"github.com/recookio/recook/pkg/unpack"
	"github.com/spf13/cobra"
)

var (
	verifyStoreDir   string
	verifyAlgorithms []string
	verifyPause      bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify FEED [ID...]",
	Short: "Cook a feed's recipes and verify the recorded manifest digests",
	Long: `Verify rebuilds implementations from their recipes, using archives already
present in the local store, and compares the resulting manifest digests with
what the feed records.

With explicit IDs only those implementations are processed, and every ID must
exist in the feed. Without IDs every implementation declaring at least one
build step is scanned; implementations whose sources are absent locally are
skipped when they already have a recorded digest.

If any attribute was corrected the feed is rewritten in place, with the
original kept as a backup next to it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.verify")

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		storeDir := cfg.Store.Dir
		if verifyStoreDir != "" {
			storeDir = verifyStoreDir
		}
		algorithms := cfg.Digest.Algorithms
		if len(verifyAlgorithms) > 0 {
			algorithms = verifyAlgorithms
		}

		doc, err := feed.Load(args[0])
		if err != nil {
			return err
		}
		doc.BackupSuffix = cfg.Backup.Suffix

		ck := cooker.New(store.Store{Dir: storeDir}, unpack.New())
		if verifyPause {
			ck.Pause = pauseForOperator
		}

		runner := &batch.Runner{
			Doc:        doc,
			Cooker:     ck,
			Algorithms: algorithms,
		}

		logger.Info().
			Str("feed", args[0]).
			Str("store", storeDir).
			Strs("algorithms", algorithms).
			Int("targets", len(args)-1).
			Msg("Starting verification")

		var reports []batch.ImplReport
		var runErr error
		if len(args) > 1 {
			reports, runErr = runner.Targeted(args[1:])
		} else {
			reports, runErr = runner.ScanAll()
		}

		renderer := ui.NewRenderer(cmd.OutOrStdout())
		renderer.Render(reports)
		renderer.Summary(reports)

		// Partial progress is persisted, not rolled back: corrections from
		// implementations that verified before a failure still land.
		if doc.Modified() {
			if dryRun {
				logger.Info().Msg("Dry run mode, feed not rewritten")
			} else if saveErr := doc.Save(); saveErr != nil {
				logger.Error().Err(saveErr).Str("feed", args[0]).Msg("Failed to rewrite the feed")
				if runErr == nil {
					runErr = saveErr
				}
			}
		}
		return runErr
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyStoreDir, "store", "", "Directory of locally cached archives (overrides config)")
	verifyCmd.Flags().StringArrayVar(&verifyAlgorithms, "algorithm", nil, "Digest algorithm to use when none is recorded (repeatable, overrides config)")
	verifyCmd.Flags().BoolVar(&verifyPause, "pause", false, "Pause after each successful cook so the build root can be inspected")
}

// pauseForOperator blocks until the operator hits Enter
func pauseForOperator(root string) {
	fmt.Fprintf(os.Stderr, "Build root available at %s\nPress Enter to continue...", root)
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
}
