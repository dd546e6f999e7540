// Package mtest contains helpers shared by tests across the module.
package mtest

import (
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
)

// NewLogger returns a logger that writes through t.Log,
// so output is attributed to the test and only shown on failure or -v.
func NewLogger(t *testing.T) *slog.Logger {
	return slogt.New(t)
}
