// warden-cli manages the repository index that reviews draw their code
// context from.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command did not complete", "error", err)
		os.Exit(1)
	}
}
