package interfaces

import "time"

// ReportSummarizer aggregates a day's trade records into a CSV report.
type ReportSummarizer interface {
	// SummarizeDay writes the CSV for the given date and returns its path.
	// An empty path with a nil error means there were no trades that day.
	SummarizeDay(t time.Time) (csvPath string, err error)

	// SummarizeToday summarizes the current trading day (Eastern time).
	SummarizeToday() (csvPath string, err error)
}
