package http

import "time"

// TimeFormat is the RFC 1123 layout HTTP uses for dates.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

func FormatDate(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
