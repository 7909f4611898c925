package model

import "time"

// TimestampFormat is the canonical storage encoding for all timestamps:
// RFC 3339, UTC, whole seconds. Sub-second precision is deliberately
// dropped so that string comparison in SQL and time comparison in Go
// agree on ordering.
const TimestampFormat = "2006-01-02T15:04:05Z"

// FormatTime encodes a timestamp for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(TimestampFormat)
}

// ParseTime decodes a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// CompareVersions orders version rows by the canonical current-state
// triple: effective_at, then version, then row id. The row maximal
// under this order is the entity's current state. Returns -1, 0, or 1.
func CompareVersions(aEffective time.Time, aVersion, aID int64, bEffective time.Time, bVersion, bID int64) int {
	if c := aEffective.Compare(bEffective); c != 0 {
		return c
	}
	if aVersion != bVersion {
		if aVersion < bVersion {
			return -1
		}
		return 1
	}
	if aID != bID {
		if aID < bID {
			return -1
		}
		return 1
	}
	return 0
}

// CompareEvents orders events by the canonical (at, id) pair.
func CompareEvents(aAt time.Time, aID int64, bAt time.Time, bID int64) int {
	if c := aAt.Compare(bAt); c != 0 {
		return c
	}
	if aID != bID {
		if aID < bID {
			return -1
		}
		return 1
	}
	return 0
}
