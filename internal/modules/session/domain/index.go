package domain

import "time"

// IndexedPeak is one row of the session index joined with its session.
type IndexedPeak struct {
	SessionPath string
	SourcePath  string
	Kind        string
	Scans       string
	Ordinal     int
	Bound1      int
	Bound2      int
	Value       float64
	Available   bool
	UpdatedAt   time.Time
}
