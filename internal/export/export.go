// Package export renders a patient's reading history into the supported
// interchange formats. All formats consume the same ascending reading
// sequence from the repository, so they always agree with each other and
// with the dashboard.
package export

import (
	"time"
)

// TimestampFormat is the human-readable timestamp layout shared by every
// export format.
const TimestampFormat = "2006-01-02 15:04:05"

func formatTimestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}
