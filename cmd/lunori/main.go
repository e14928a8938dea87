// Lunori is a local-first voice journaling backend.
//
// It accepts uploaded or live-recorded speech, transcribes it with a local
// Whisper model, scores the text for emotional valence, captions attached
// images, and persists everything as JSON journal entries on local disk.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lunori",
		Short: "Local-first voice journaling backend",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lunori %s\n", version)
		},
	}
}
