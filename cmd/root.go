package cmd

import (
	"github.com/spf13/cobra"
)

const app = "hr-interviewer"

var (
	// Used for flags.
	flagDebug bool
	flagJSON  bool

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hr-interviewer runs automated phone screening interviews and scores the transcripts",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "json format for logging")
}
