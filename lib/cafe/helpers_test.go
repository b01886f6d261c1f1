// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"io"
	"log/slog"
)

// discardLogger returns a logger that swallows all output, for tests
// that only care about behavior, not log content.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
