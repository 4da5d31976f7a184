package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/zpam/hamspam/pkg/email"
	"github.com/zpam/hamspam/pkg/learning"
	"github.com/zpam/hamspam/pkg/service"
)

// readCorpus loads a JSON array of {label, text} records
func readCorpus(path string) ([]service.Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	var examples []service.Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("failed to parse corpus %s: %w", path, err)
	}
	return examples, nil
}

// writeCorpus stores examples as an indented JSON array
func writeCorpus(path string, examples []service.Example) error {
	data, err := json.MarshalIndent(examples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return nil
}

// readEmailDir turns every message file under dir into an example with
// the given label. Unparseable files are reported through onError and
// skipped.
func readEmailDir(dir string, label learning.Label, onError func(path string, err error)) ([]service.Example, error) {
	files, err := email.FindEmailFiles(dir)
	if err != nil {
		return nil, err
	}

	parser := email.NewParser()
	examples := make([]service.Example, 0, len(files))
	for _, path := range files {
		msg, err := parser.ParseFromFile(path)
		if err != nil {
			if onError != nil {
				onError(path, err)
			}
			continue
		}
		examples = append(examples, service.Example{Label: label.String(), Text: msg.Text()})
	}

	return examples, nil
}

// batches splits examples into chunks of at most size
func batches(examples []service.Example, size int) [][]service.Example {
	if size <= 0 {
		size = len(examples)
	}

	var out [][]service.Example
	for start := 0; start < len(examples); start += size {
		end := start + size
		if end > len(examples) {
			end = len(examples)
		}
		out = append(out, examples[start:end])
	}
	return out
}
