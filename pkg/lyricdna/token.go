package lyricdna

import "time"

// Token is a monotonically increasing generation counter. Deferred actions
// capture the token at schedule time; a fired action whose token no longer
// matches the engine's current token is a silent no-op. This is the
// cooperative alternative to preemptive cancellation.
type Token uint64

// deferred is a pending action checked cooperatively on each frame. It fires
// at most once, and only if its token is still current.
type deferred struct {
	fireAt time.Time
	tok    Token
}

func (d *deferred) due(now time.Time, current Token) bool {
	return d != nil && d.tok == current && !now.Before(d.fireAt)
}
