package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// EnvServer overrides the default server URL used by client commands
const EnvServer = "HAMSPAM_SERVER"

var (
	configFile string
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:   "hamspam",
	Short: "hamspam - token frequency spam classifier",
	Long: `hamspam labels messages as spam or ham with a token frequency model
that is trained incrementally over HTTP.

Start a server with 'hamspam serve', feed it labeled examples with
'hamspam train' and classify text with 'hamspam classify'.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hamspam - token frequency spam classifier")
		fmt.Println("Use 'hamspam --help' for usage information")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func defaultServerURL() string {
	if v := os.Getenv(EnvServer); v != "" {
		return v
	}
	return "http://localhost:3000"
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServerURL(), "hamspam server URL for client commands")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(configCmd)
}
