//go:build !protogen

package main

import (
	"context"
	"log/slog"
)

// Reporting export needs generated protos; without the protogen tag it is a
// no-op.
func setupReportingExport(_ context.Context, _ *slog.Logger) {}
