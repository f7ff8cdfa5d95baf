package store

import "time"

// RetentionWindow is the fixed validity period for persisted state. The expiry
// timestamp is computed once per save and is not extended by reads.
const RetentionWindow = 30 * 24 * time.Hour

// IsExpired reports whether persisted state stamped with expiry is stale at
// now. The boundary is exact: state expires strictly after the timestamp.
func IsExpired(expiry, now time.Time) bool {
	return now.After(expiry)
}

// ExpiryFrom returns the expiry timestamp for a save performed at saveTime.
func ExpiryFrom(saveTime time.Time) time.Time {
	return saveTime.Add(RetentionWindow)
}
