package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zpam/hamspam/pkg/client"
	"github.com/zpam/hamspam/pkg/learning"
	"github.com/zpam/hamspam/pkg/service"
)

var (
	trainSpamDir   string
	trainHamDir    string
	trainFile      string
	trainBatchSize int
	trainVerbose   bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a running server with labeled examples",
	Long: `Send labeled examples to a running hamspam server.

Examples come from directories of email files (--spam-dir, --ham-dir) and/or
a JSON corpus file (--file) holding [{"label": "spam", "text": "..."}].
Each batch is applied atomically by the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if trainSpamDir == "" && trainHamDir == "" && trainFile == "" {
			return fmt.Errorf("at least one of --spam-dir, --ham-dir or --file must be specified")
		}

		onError := func(path string, err error) {
			if trainVerbose {
				fmt.Printf("⚠️  Failed to parse %s: %v\n", path, err)
			}
		}

		fmt.Printf("🧠 hamspam Training\n")
		fmt.Printf("═══════════════════════════════════════\n")
		fmt.Printf("🌐 Server: %s\n", serverURL)

		var examples []service.Example
		if trainSpamDir != "" {
			spam, err := readEmailDir(trainSpamDir, learning.Spam, onError)
			if err != nil {
				return fmt.Errorf("failed to read spam emails: %w", err)
			}
			fmt.Printf("📁 Spam directory: %s (%d emails)\n", trainSpamDir, len(spam))
			examples = append(examples, spam...)
		}
		if trainHamDir != "" {
			ham, err := readEmailDir(trainHamDir, learning.Ham, onError)
			if err != nil {
				return fmt.Errorf("failed to read ham emails: %w", err)
			}
			fmt.Printf("📁 Ham directory: %s (%d emails)\n", trainHamDir, len(ham))
			examples = append(examples, ham...)
		}
		if trainFile != "" {
			corpus, err := readCorpus(trainFile)
			if err != nil {
				return err
			}
			fmt.Printf("📄 Corpus file: %s (%d records)\n", trainFile, len(corpus))
			examples = append(examples, corpus...)
		}
		fmt.Printf("\n")

		c := client.New(serverURL)
		start := time.Now()

		var total service.TrainReport
		for i, batch := range batches(examples, trainBatchSize) {
			report, err := c.TrainBulk(batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i+1, err)
			}
			total.Trained += report.Trained
			total.Skipped += report.Skipped
			total.Tokens += report.Tokens

			if trainVerbose {
				fmt.Printf("📚 Batch %d: %d trained, %d skipped, %d tokens\n",
					i+1, report.Trained, report.Skipped, report.Tokens)
			}
		}

		duration := time.Since(start)

		fmt.Printf("🎉 Training Complete!\n")
		fmt.Printf("📊 Examples trained: %d\n", total.Trained)
		if total.Skipped > 0 {
			fmt.Printf("⏭️  Examples skipped (unknown label): %d\n", total.Skipped)
		}
		fmt.Printf("🔤 Tokens added: %d\n", total.Tokens)
		fmt.Printf("⏱️  Time taken: %v\n", duration.Round(time.Millisecond))
		if seconds := duration.Seconds(); seconds > 0 {
			fmt.Printf("📈 Rate: %.0f examples/second\n", float64(total.Trained+total.Skipped)/seconds)
		}

		if stats, err := c.Stats(); err == nil {
			fmt.Printf("\n")
			learning.PrintStats(os.Stdout, stats.Model, nil, nil)
		}

		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainSpamDir, "spam-dir", "", "Directory containing spam emails")
	trainCmd.Flags().StringVar(&trainHamDir, "ham-dir", "", "Directory containing ham emails")
	trainCmd.Flags().StringVarP(&trainFile, "file", "f", "", "JSON corpus of {label, text} records")
	trainCmd.Flags().IntVarP(&trainBatchSize, "batch-size", "b", 500, "Examples per request (0 = single request)")
	trainCmd.Flags().BoolVarP(&trainVerbose, "verbose", "v", false, "Verbose output")
}
