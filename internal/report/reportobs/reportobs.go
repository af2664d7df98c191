// Package reportobs wraps the daily report summarizer with tracing and logs.
package reportobs

import (
	"context"
	"time"

	"natgas-trader/internal/interfaces"
	"natgas-trader/internal/logger"
	"natgas-trader/internal/trace"
)

type observed struct {
	inner interfaces.ReportSummarizer
}

var _ interfaces.ReportSummarizer = (*observed)(nil)

func Wrap(s interfaces.ReportSummarizer) interfaces.ReportSummarizer {
	return &observed{inner: s}
}

func (o *observed) SummarizeDay(t time.Time) (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "report.SummarizeDay")
	defer span.End()

	csvPath, err := o.inner.SummarizeDay(t)
	if err != nil {
		logger.ErrorWithErr(ctx, "Daily report generation failed", err, "date", t.Format("2006-01-02"))
		return "", err
	}
	if csvPath == "" {
		logger.Debug(ctx, "No trades to report", "date", t.Format("2006-01-02"))
		return "", nil
	}
	logger.Info(ctx, "Daily report written", "date", t.Format("2006-01-02"), "csv_path", csvPath)
	return csvPath, nil
}

func (o *observed) SummarizeToday() (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "report.SummarizeToday")
	defer span.End()

	csvPath, err := o.inner.SummarizeToday()
	if err != nil {
		logger.ErrorWithErr(ctx, "Daily report generation failed", err)
		return "", err
	}
	if csvPath != "" {
		logger.Info(ctx, "Daily report written", "csv_path", csvPath)
	}
	return csvPath, nil
}
