package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/zpam/hamspam/pkg/client"
	"github.com/zpam/hamspam/pkg/email"
	"github.com/zpam/hamspam/pkg/learning"
)

var (
	classifyEmail string
	classifyJSON  bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify text as spam or ham",
	Long: `Send text to a running hamspam server and print the verdict.

The text is taken from the arguments, from an email file with --email,
or from standard input when neither is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, source, err := classifyInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		result, err := client.New(serverURL).Classify(text)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if classifyJSON {
			data, err := json.Marshal(result)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		printClassification(out, source, result)
		return nil
	},
}

func classifyInput(stdin io.Reader, args []string) (text, source string, err error) {
	switch {
	case classifyEmail != "":
		msg, err := email.NewParser().ParseFromFile(classifyEmail)
		if err != nil {
			return "", "", fmt.Errorf("failed to parse email: %w", err)
		}
		return msg.Text(), classifyEmail, nil

	case len(args) > 0:
		return strings.Join(args, " "), "arguments", nil

	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
}

func printClassification(w io.Writer, source string, result learning.Classification) {
	if result.IsSpam() {
		fmt.Fprintf(w, "🚫 SPAM  score %.4f  (%s)\n", result.Score, source)
	} else {
		fmt.Fprintf(w, "✅ HAM   score %.4f  (%s)\n", result.Score, source)
	}
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyEmail, "email", "e", "", "Classify the text of an email file")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print the raw JSON result")
}
