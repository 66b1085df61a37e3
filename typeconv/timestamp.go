// Copyright 2024 Peltmark Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package typeconv

import (
	"time"

	"github.com/peltmark/sqlbridge/dberr"
)

// isoLayout is the wire layout for TimestampISO8601: RFC 3339 in UTC with
// fixed millisecond precision.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// storedLayouts are the text layouts accepted for timestamps read from or
// bound to the engine. SQLite has no timestamp storage class, so text
// timestamps appear in the handful of shapes its date functions emit.
var storedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp interprets a stored timestamp value. Text is parsed against
// the known layouts and integers are interpreted as signed milliseconds
// since the Unix epoch.
func parseTimestamp(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case string:
		return parseTimestampText(v)
	case []byte:
		return parseTimestampText(string(v))
	}
	return time.Time{}, dberr.Mismatch("cannot read %T as a timestamp", value)
}

func parseTimestampText(text string) (time.Time, error) {
	for _, layout := range storedLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, dberr.Mismatch("cannot parse %q as a timestamp", text)
}

// formatTimestamp renders a timestamp in the configured wire format.
func formatTimestamp(t time.Time, format TimestampFormat) any {
	if format == TimestampUnixMillis {
		return t.UnixMilli()
	}
	return t.UTC().Format(isoLayout)
}
