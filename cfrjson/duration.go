package cfrjson

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a span of time expressed as a millisecond quantum. All
// reconciliation arithmetic in this module happens in this quantum, never in
// floating point, so that route invariants hold exactly.
//
// On the wire it is a string of the form "<seconds>s", where <seconds> may be
// fractional (down to millisecond resolution) and may be negative where the
// caller explicitly allows negative wait durations.
type Duration int64

// Milliseconds returns d as a plain integer count of milliseconds.
func (d Duration) Milliseconds() int64 { return int64(d) }

// Seconds returns d as a float64 number of seconds, for display only.
func (d Duration) Seconds() float64 { return float64(d) / 1000.0 }

func DurationFromSeconds(seconds float64) Duration {
	return Duration(int64(seconds*1000 + sign(seconds)*0.5))
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

// ParseDurationString parses a "<seconds>s" wire value into a Duration.
func ParseDurationString(s string) (Duration, error) {
	if s == "" {
		return 0, nil
	}
	if !strings.HasSuffix(s, "s") {
		return 0, fmt.Errorf("cfrjson: invalid duration string %q: missing trailing %q", s, "s")
	}
	numeric := strings.TrimSuffix(s, "s")
	seconds, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, fmt.Errorf("cfrjson: invalid duration string %q: %w", s, err)
	}
	return DurationFromSeconds(seconds), nil
}

// AsDurationString renders d in the "<seconds>s" wire form, trimming
// trailing zeros the way the reference implementation does.
func AsDurationString(d Duration) string {
	ms := int64(d)
	prefix := ""
	if ms < 0 {
		prefix = "-"
		ms = -ms
	}
	whole := ms / 1000
	frac := ms % 1000
	if frac == 0 {
		return prefix + strconv.FormatInt(whole, 10) + "s"
	}
	s := fmt.Sprintf("%d.%03d", whole, frac)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return prefix + s + "s"
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(AsDurationString(d))), nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := ParseDurationString(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Timestamp is a point in time expressed as milliseconds since the Unix
// epoch. On the wire it is an RFC3339 string.
type Timestamp int64

func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

func (t Timestamp) Add(d Duration) Timestamp {
	return Timestamp(int64(t) + int64(d))
}

// Sub returns t - other as a Duration.
func (t Timestamp) Sub(other Timestamp) Duration {
	return Duration(int64(t) - int64(other))
}

func ParseTimeString(s string) (Timestamp, error) {
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("cfrjson: invalid time string %q: %w", s, err)
	}
	return TimestampFromTime(parsed), nil
}

func AsTimeString(t Timestamp) string {
	return t.Time().Format(time.RFC3339)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(AsTimeString(t))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := ParseTimeString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
