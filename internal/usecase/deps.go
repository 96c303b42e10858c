package usecase

import (
	"io"
	"log/slog"
	"time"
)

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clockOrNow(now func() time.Time) func() time.Time {
	if now != nil {
		return now
	}
	return time.Now
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc != nil {
		return loc
	}
	return time.UTC
}
