package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zpam/hamspam/pkg/cache"
	"github.com/zpam/hamspam/pkg/generator"
	"github.com/zpam/hamspam/pkg/learning"
	"github.com/zpam/hamspam/pkg/profiler"
	"github.com/zpam/hamspam/pkg/service"
	"golang.org/x/sync/errgroup"
)

var (
	benchmarkInput      string
	benchmarkSpamDir    string
	benchmarkHamDir     string
	benchmarkLanguage   string
	benchmarkCount      int
	benchmarkSeed       int64
	benchmarkTrainRatio float64
	benchmarkRuns       int
	benchmarkConcurrent int
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure classification accuracy and throughput",
	Long: `Train an in-process classifier on part of a labeled corpus and classify
the rest, reporting accuracy and latency.

The corpus comes from --input (JSON corpus), --spam-dir/--ham-dir (email
files) or, when none is given, --count synthetic messages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchmarkTrainRatio <= 0 || benchmarkTrainRatio >= 1 {
			return fmt.Errorf("train-ratio must be between 0 and 1 (exclusive)")
		}
		if benchmarkRuns < 1 || benchmarkConcurrent < 1 {
			return fmt.Errorf("runs and concurrency must be at least 1")
		}

		examples, source, err := benchmarkCorpus()
		if err != nil {
			return err
		}
		if len(examples) < 2 {
			return fmt.Errorf("need at least 2 examples, got %d", len(examples))
		}

		rand.New(rand.NewSource(benchmarkSeed)).Shuffle(len(examples), func(i, j int) {
			examples[i], examples[j] = examples[j], examples[i]
		})
		split := int(float64(len(examples)) * benchmarkTrainRatio)
		if split == 0 {
			split = 1
		}
		trainSet, testSet := examples[:split], examples[split:]

		fmt.Printf("🚀 hamspam Benchmark\n")
		fmt.Printf("═══════════════════════════════════════\n")
		fmt.Printf("📁 Corpus: %s (%d examples)\n", source, len(examples))
		fmt.Printf("📚 Train/test: %d/%d\n", len(trainSet), len(testSet))
		fmt.Printf("🔄 Runs: %d, ⚡ workers: %d\n\n", benchmarkRuns, benchmarkConcurrent)

		model, err := learning.NewModel(benchmarkLanguage)
		if err != nil {
			return err
		}
		prof := profiler.NewProfiler(profiler.DefaultWindow)
		svc := service.NewClassifier(learning.NewGuard(model), cache.NopCache{}, prof, zerolog.Nop())

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		trainStart := time.Now()
		report, err := svc.TrainBulk(ctx, trainSet)
		if err != nil {
			return err
		}
		trainTime := time.Since(trainStart)

		var conf Confusion
		start := time.Now()
		for run := 0; run < benchmarkRuns; run++ {
			c, err := evaluate(ctx, svc, testSet, benchmarkConcurrent)
			if err != nil {
				return err
			}
			if run == 0 {
				conf = c
			}
		}
		elapsed := time.Since(start)

		classified := len(testSet) * benchmarkRuns
		fmt.Printf("📚 Training: %d examples, %d tokens in %v\n", report.Trained, report.Tokens, trainTime.Round(time.Millisecond))
		if report.Skipped > 0 {
			fmt.Printf("⏭️  Skipped (unknown label): %d\n", report.Skipped)
		}
		fmt.Printf("⚡ Classified %d messages in %v", classified, elapsed.Round(time.Millisecond))
		if s := elapsed.Seconds(); s > 0 {
			fmt.Printf(" (%.0f msg/s)", float64(classified)/s)
		}
		fmt.Printf("\n\n")

		conf.Print(os.Stdout)
		profiler.PrintReport(os.Stdout, prof.GetAllStats())
		return nil
	},
}

func benchmarkCorpus() ([]service.Example, string, error) {
	switch {
	case benchmarkInput != "":
		examples, err := readCorpus(benchmarkInput)
		return examples, benchmarkInput, err

	case benchmarkSpamDir != "" || benchmarkHamDir != "":
		var examples []service.Example
		for _, d := range []struct {
			dir   string
			label learning.Label
		}{{benchmarkSpamDir, learning.Spam}, {benchmarkHamDir, learning.Ham}} {
			if d.dir == "" {
				continue
			}
			part, err := readEmailDir(d.dir, d.label, nil)
			if err != nil {
				return nil, "", err
			}
			examples = append(examples, part...)
		}
		return examples, "email directories", nil

	default:
		corpus := generator.New(benchmarkSeed).Corpus(benchmarkCount, 0.5)
		examples := make([]service.Example, len(corpus))
		for i, m := range corpus {
			examples[i] = service.Example{Label: m.Label.String(), Text: m.Text()}
		}
		return examples, "synthetic", nil
	}
}

// Confusion counts classifier outcomes with spam as the positive class
type Confusion struct {
	TruePositive  int
	FalsePositive int
	TrueNegative  int
	FalseNegative int
	Unlabeled     int
}

// Add records one prediction against its expected label
func (c *Confusion) Add(expected, got learning.Label) {
	switch {
	case expected == learning.Spam && got == learning.Spam:
		c.TruePositive++
	case expected == learning.Spam:
		c.FalseNegative++
	case got == learning.Spam:
		c.FalsePositive++
	default:
		c.TrueNegative++
	}
}

func (c Confusion) total() int {
	return c.TruePositive + c.FalsePositive + c.TrueNegative + c.FalseNegative
}

// Accuracy returns the share of correct predictions
func (c Confusion) Accuracy() float64 {
	return ratio(c.TruePositive+c.TrueNegative, c.total())
}

// Precision returns the share of spam predictions that were spam
func (c Confusion) Precision() float64 {
	return ratio(c.TruePositive, c.TruePositive+c.FalsePositive)
}

// Recall returns the share of spam that was caught
func (c Confusion) Recall() float64 {
	return ratio(c.TruePositive, c.TruePositive+c.FalseNegative)
}

// Print writes an accuracy report
func (c Confusion) Print(w io.Writer) {
	fmt.Fprintf(w, "🎯 Classification Results:\n")
	fmt.Fprintf(w, "  Accuracy:  %.2f%%\n", c.Accuracy()*100)
	fmt.Fprintf(w, "  Precision: %.2f%%\n", c.Precision()*100)
	fmt.Fprintf(w, "  Recall:    %.2f%%\n", c.Recall()*100)
	fmt.Fprintf(w, "  TP %d  FP %d  TN %d  FN %d\n", c.TruePositive, c.FalsePositive, c.TrueNegative, c.FalseNegative)
	if c.Unlabeled > 0 {
		fmt.Fprintf(w, "  Unlabeled examples ignored: %d\n", c.Unlabeled)
	}
	fmt.Fprintf(w, "\n")
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// evaluate classifies every example with at most workers in flight
func evaluate(ctx context.Context, svc *service.Classifier, examples []service.Example, workers int) (Confusion, error) {
	var (
		mu        sync.Mutex
		conf      Confusion
		unlabeled int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, ex := range examples {
		expected, err := learning.ParseLabel(ex.Label)
		if err != nil {
			unlabeled++
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			got := svc.Classify(ctx, ex.Text)

			mu.Lock()
			conf.Add(expected, got.Label)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	conf.Unlabeled = unlabeled
	return conf, err
}

func init() {
	benchmarkCmd.Flags().StringVarP(&benchmarkInput, "input", "i", "", "JSON corpus of {label, text} records")
	benchmarkCmd.Flags().StringVar(&benchmarkSpamDir, "spam-dir", "", "Directory containing spam emails")
	benchmarkCmd.Flags().StringVar(&benchmarkHamDir, "ham-dir", "", "Directory containing ham emails")
	benchmarkCmd.Flags().StringVarP(&benchmarkLanguage, "language", "l", "english", "Stemming language")
	benchmarkCmd.Flags().IntVarP(&benchmarkCount, "count", "n", 1000, "Synthetic messages when no corpus is given")
	benchmarkCmd.Flags().Int64Var(&benchmarkSeed, "seed", 1, "Random seed for shuffling and generation")
	benchmarkCmd.Flags().Float64Var(&benchmarkTrainRatio, "train-ratio", 0.7, "Share of the corpus used for training")
	benchmarkCmd.Flags().IntVarP(&benchmarkRuns, "runs", "r", 1, "Number of classification passes")
	benchmarkCmd.Flags().IntVarP(&benchmarkConcurrent, "concurrency", "j", 4, "Concurrent classification workers")
}
