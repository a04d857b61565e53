// Command agentloop runs a task through the agent loop with a small set of
// demo tools.
package main

import (
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
