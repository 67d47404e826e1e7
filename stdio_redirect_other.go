//go:build !unix

package main

import (
	"fmt"
	"os"
	"time"
)

// redirectStdIO swaps os.Stdout and os.Stderr. Runtime panics still reach
// the original stderr on these platforms.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "--- flightdeck started %s (pid %d) ---\n", time.Now().Format(time.RFC3339), os.Getpid())
	os.Stdout = f
	os.Stderr = f
	return nil
}
