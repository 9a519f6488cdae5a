package entity

import "time"

// BusyInterval is a half-open range [Start, End) during which a host is unavailable.
type BusyInterval struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Title  string    `json:"title,omitempty"`
	Source string    `json:"source"`
}

// UTC returns a copy with both bounds in UTC.
func (b BusyInterval) UTC() BusyInterval {
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()
	return b
}

func (b BusyInterval) Valid() bool {
	return b.End.After(b.Start)
}
