package domain

import (
	"bytes"
	"time"
)

// TimestampLayout is ISO-8601 in UTC with exactly three fractional digits.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a time encoded with fixed millisecond precision.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to milliseconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var parsed time.Time
	if err := parsed.UnmarshalJSON(data); err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}
