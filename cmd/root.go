package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	BucketDavVersion = "0.0.1dev"
)

var rootCmd = &cobra.Command{
	Use:               "bucketdav",
	Short:             "Serve a flat object store bucket as a WebDAV filesystem",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, err = fmt.Fprintln(os.Stderr, err)
		if err != nil {
			return
		}
		os.Exit(1)
	}
}
