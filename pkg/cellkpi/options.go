// Package cellkpi turns battery-cycling workbooks into per-cell KPI summaries.
package cellkpi

import (
	"log/slog"

	"github.com/blctm/gigagreen/pkg/cellkpi/kpi"
)

// Options configures a Pipeline.
type Options struct {
	// Sheet selects the worksheet to read. Empty selects the first sheet.
	Sheet string
	// Protocol sets the KPI windows. If nil, kpi.DefaultProtocol is used.
	Protocol *kpi.Protocol
	// KeepGoing makes batches record fatal per-file errors and continue
	// instead of aborting.
	KeepGoing bool
	// Logger receives per-file outcomes. If nil, slog.Default is used.
	Logger *slog.Logger
}

// DefaultOptions returns default pipeline options.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
