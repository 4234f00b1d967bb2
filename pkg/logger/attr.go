package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups the non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under the key "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Slug records a slug value under the key "slug".
func Slug(value string) slog.Attr {
	return slog.String("slug", value)
}

// Collection records a collection or table name under the key "collection".
func Collection(name string) slog.Attr {
	return slog.String("collection", name)
}

// Scope records a resolved sibling scope under the key "scope".
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// RecordID records a record identity under the key "record_id".
// Empty identities (unsaved records) produce an empty Attr.
func RecordID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("record_id", id)
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Count records a counter under the given key.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
