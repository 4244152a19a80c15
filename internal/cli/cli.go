// Package cli provides CLI commands for the warden application.
package cli

import (
	"context"
)

// NewContext creates the base context for one-shot CLI commands.
func NewContext() context.Context {
	return context.Background()
}
