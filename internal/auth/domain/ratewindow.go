package domain

import "time"

// IdentityKind says whether a rate window is keyed by subject or by address.
type IdentityKind string

const (
	IdentitySubject IdentityKind = "subject"
	IdentityIP      IdentityKind = "ip"
)

// IdentityKey is who a rate window counts requests for.
type IdentityKey struct {
	Kind  IdentityKind
	Value string
}

// RateWindowKey identifies one fixed-window counter row.
type RateWindowKey struct {
	Identity    IdentityKey
	Endpoint    string
	Method      string
	WindowStart time.Time
}

// Previous returns the key of the window immediately before k.
func (k RateWindowKey) Previous(window time.Duration) RateWindowKey {
	k.WindowStart = k.WindowStart.Add(-window)
	return k
}

// RateWindow is the counter for one key. IsBlocked stays set until
// BlockUntil passes, even if that spills into the following window.
type RateWindow struct {
	Key          RateWindowKey
	WindowEnd    time.Time
	RequestCount int
	IsBlocked    bool
	BlockUntil   time.Time
}

// BlockedAt reports whether w is blocking requests at now.
func (w RateWindow) BlockedAt(now time.Time) bool {
	return w.IsBlocked && now.Before(w.BlockUntil)
}

// WindowStart floors now to the start of its fixed window.
func WindowStart(now time.Time, window time.Duration) time.Time {
	ms := window.Milliseconds()
	if ms <= 0 {
		return now
	}
	start := (now.UnixMilli() / ms) * ms
	return time.UnixMilli(start).UTC()
}
