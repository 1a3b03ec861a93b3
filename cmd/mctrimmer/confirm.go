package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mcworld/mctrimmer/internal/mclog"
)

// confirm asks the user for confirmation before an in-place, unbacked-up
// write. If the user declines or provides an invalid response, the
// program exits.
func confirm() {
	fmt.Print(`WARNING: This will modify your world in-place with no backup. You should make a backup before proceeding.

Proceed? (y/N): `)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		mclog.Info("Exiting.")
		os.Exit(1)
	}
	resp := scanner.Text()
	switch strings.TrimSpace(strings.ToLower(resp)) {
	case "y", "yes":
		return
	case "n", "no", "":
		mclog.Info("Exiting.")
		os.Exit(1)
	default:
		mclog.Errorf("Invalid response: %q, expected Y or N. Exiting.", resp)
		os.Exit(1)
	}
}
