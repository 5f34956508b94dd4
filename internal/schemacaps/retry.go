package schemacaps

import (
	"context"
	"errors"
)

// Columns returns base followed by every optional column caps reports present on table.
func Columns(caps Capabilities, table string, base []string, optional ...string) []string {
	out := append(make([]string, 0, len(base)+len(optional)), base...)
	for _, column := range optional {
		if caps != nil && caps.Has(table, column) {
			out = append(out, column)
		}
	}
	return out
}

// RunWithDrift runs write with the column set produced by columns. When the
// write fails it refreshes caps and, if the refresh shrank the column set,
// runs write exactly once more with the reduced set. It reports whether the
// retry ran. The original error is returned when no retry applies.
func RunWithDrift(ctx context.Context, caps Capabilities, columns func() []string, write func([]string) error) (bool, error) {
	first := columns()
	err := write(first)
	if err == nil || caps == nil {
		return false, err
	}
	if ctx.Err() != nil {
		return false, err
	}
	if refreshErr := caps.Refresh(ctx); refreshErr != nil {
		return false, errors.Join(err, refreshErr)
	}
	reduced := columns()
	if len(reduced) >= len(first) {
		return false, err
	}
	return true, write(reduced)
}
