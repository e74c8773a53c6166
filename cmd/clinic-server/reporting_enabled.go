//go:build protogen

package main

import (
	"context"
	"log/slog"
	"time"

	"clinicbook/libs/config"
	"clinicbook/libs/grpcx"
	reportingv1 "clinicbook/protos/gen/reporting/v1"
)

// setupReportingExport streams daily appointment summaries to the external
// analytics collector. Requires generated protos (make protogen).
func setupReportingExport(ctx context.Context, logger *slog.Logger) {
	addr := config.String("REPORTING_GRPC_ADDR", "")
	if addr == "" {
		return
	}

	conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		logger.Error("reporting export dial failed", "err", err)
		return
	}
	client := reportingv1.NewReportingServiceClient(conn)

	go func() {
		defer conn.Close()
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				_, err := client.Ping(callCtx, &reportingv1.PingRequest{})
				cancel()
				if err != nil {
					logger.Warn("reporting export ping failed", "err", err)
				}
			}
		}
	}()
}
