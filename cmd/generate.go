package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/zpam/hamspam/pkg/generator"
	"github.com/zpam/hamspam/pkg/service"
)

var (
	generateCount  int
	generateOutput string
	generateSplit  float64
	generateSeed   int64
	generateFormat string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic labeled mail",
	Long: `Generate a synthetic spam/ham dataset for training and benchmarking.

With --format json the output is a single corpus file usable by
"train --file" and "benchmark --input". With --format eml the output is a
directory with spam/ and ham/ subdirectories of .eml files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateCount <= 0 {
			return fmt.Errorf("count must be greater than 0")
		}
		if generateSplit < 0 || generateSplit > 1 {
			return fmt.Errorf("spam-ratio must be between 0 and 1")
		}

		output := generateOutput
		if output == "" {
			output = "test-data"
			if generateFormat == "json" {
				output = "corpus.json"
			}
		}

		corpus := generator.New(generateSeed).Corpus(generateCount, generateSplit)

		fmt.Printf("🧪 Generating %d messages (%.1f%% spam, seed %d)\n", generateCount, generateSplit*100, generateSeed)

		start := time.Now()
		var err error
		switch generateFormat {
		case "json":
			err = writeJSONCorpus(output, corpus)
		case "eml":
			err = writeEMLCorpus(output, corpus)
		default:
			return fmt.Errorf("unknown format %q (expected json or eml)", generateFormat)
		}
		if err != nil {
			return err
		}

		fmt.Printf("✅ Wrote %s in %v\n", output, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func writeJSONCorpus(path string, corpus []generator.Message) error {
	examples := make([]service.Example, len(corpus))
	for i, m := range corpus {
		examples[i] = service.Example{Label: m.Label.String(), Text: m.Text()}
	}
	return writeCorpus(path, examples)
}

func writeEMLCorpus(dir string, corpus []generator.Message) error {
	counts := map[string]int{}
	for _, m := range corpus {
		label := m.Label.String()
		sub := filepath.Join(dir, label)
		if counts[label] == 0 {
			if err := os.MkdirAll(sub, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		counts[label]++

		name := filepath.Join(sub, fmt.Sprintf("%s_%04d.eml", label, counts[label]))
		if err := os.WriteFile(name, []byte(m.EML()), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 100, "Number of messages to generate")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (json) or directory (eml)")
	generateCmd.Flags().Float64VarP(&generateSplit, "spam-ratio", "r", 0.3, "Ratio of spam messages (0.0-1.0)")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 1, "Random seed")
	generateCmd.Flags().StringVar(&generateFormat, "format", "json", "Output format: json or eml")
}
