package telemetry

import (
	"fmt"
	"log/slog"
)

// SlogAPI implements API on top of a slog.Logger.
type SlogAPI struct {
	logger *slog.Logger
}

// NewSlogAPI reports to logger, or to the default logger at the time of
// the call when logger is nil.
func NewSlogAPI(logger *slog.Logger) SlogAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return SlogAPI{logger: logger}
}

// attrs turns params into key/value pairs, errors are logged under "err"
// and everything else under its position.
func attrs(pairs []any, params []any) []any {
	for i, p := range params {
		key := fmt.Sprintf("p%d", i)
		if _, ok := p.(error); ok {
			key = "err"
		}
		pairs = append(pairs, key, p)
	}
	return pairs
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	s.logger.Error("broken: "+id, attrs(nil, params)...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	s.logger.Warn(id, attrs(nil, params)...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	s.logger.Debug(message, attrs(nil, params)...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger.Info(id, "count", count)
}
