// Package logattr holds the slog attributes shared by every component so log
// lines can be filtered on the same keys.
package logattr

import (
	"log/slog"

	"github.com/google/uuid"
)

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func AggregateType(t string) slog.Attr {
	return slog.String("aggregate_type", t)
}

func AggregateID(id uuid.UUID) slog.Attr {
	return slog.String("aggregate_id", id.String())
}

func RootContextID(id uuid.UUID) slog.Attr {
	return slog.String("root_context_id", id.String())
}

func Version(v int64) slog.Attr {
	return slog.Int64("version", v)
}

func Source(s string) slog.Attr {
	return slog.String("source", s)
}

func Partition(p int) slog.Attr {
	return slog.Int("partition", p)
}

func Offset(o int64) slog.Attr {
	return slog.Int64("offset", o)
}
