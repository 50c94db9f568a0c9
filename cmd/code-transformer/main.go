// --- START OF FINAL REVISED FILE cmd/code-transformer/main.go ---
package main

import "os"

// Build-time variables 'version', 'commit', and 'date' live in root.go and
// are populated via -ldflags.

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

// --- END OF FINAL REVISED FILE cmd/code-transformer/main.go ---
