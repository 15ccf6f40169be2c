package database

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// Time stores a timestamp as UTC integer milliseconds so the same value
// round-trips identically through the SQLite and MySQL backends.
type Time struct {
	time.Time
}

// NewTime truncates t to millisecond precision in UTC.
func NewTime(t time.Time) Time {
	return Time{Time: time.UnixMilli(t.UnixMilli()).UTC()}
}

// Now returns the current time at storage precision.
func Now() Time {
	return NewTime(time.Now())
}

// Value implements the driver.Valuer interface.
func (t Time) Value() (driver.Value, error) {
	return t.UTC().UnixMilli(), nil
}

// Scan implements the sql.Scanner interface.
func (t *Time) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case int64:
		t.Time = time.UnixMilli(v).UTC()
		return nil
	case []byte:
		// The MySQL text protocol returns integer columns as bytes.
		ms, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("strconv.ParseInt(%q) > %w", v, err)
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	}
	return fmt.Errorf("unsupported time source type %T", src)
}
