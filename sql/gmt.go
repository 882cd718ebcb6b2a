package sql

import (
	"sync"
	"time"
)

const halfDay = 12 * 60 * 60

var gmtOffset = sync.OnceValue(func() time.Duration {
	return computeGMTOffset(time.Now())
})

// GMTOffset returns the local-to-GMT offset of the process. It is computed
// once, on first use, and never changes afterwards.
func GMTOffset() time.Duration {
	return gmtOffset()
}

// computeGMTOffset compares the local and GMT wall clocks at now, with the
// daylight saving hour taken out, and normalizes the difference into
// (-12h, 12h].
func computeGMTOffset(now time.Time) time.Duration {
	local := now.In(time.Local)
	gmt := now.UTC()

	localHour := local.Hour()
	if local.IsDST() {
		localHour--
	}

	delta := ((localHour-gmt.Hour())*60 + (local.Minute() - gmt.Minute())) * 60
	if delta <= -halfDay {
		delta += 2 * halfDay
	} else if delta > halfDay {
		delta -= 2 * halfDay
	}
	return time.Duration(delta) * time.Second
}
