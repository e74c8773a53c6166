package handlers

import (
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

var errNoRows = pgx.ErrNoRows

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
