package main

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// copier writes text somewhere the user can paste it from
type copier func(text string) error

// copyToClipboard copies text to the system clipboard
func copyToClipboard(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
