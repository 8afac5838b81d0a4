package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CryptoPulse/internal/domain/models"
	domrepo "CryptoPulse/internal/domain/repository"
	"CryptoPulse/pkg/cache"
)

const latestReportKey = "report:latest"

// ErrNoReport is returned before the first successful tick has been cached.
var ErrNoReport = errors.New("no report available")

// CachedReportStore keeps the most recent successful tick in a cache.Service
// so HTTP readers never touch the polling loop.
type CachedReportStore struct {
	c   cache.Service
	ttl time.Duration
}

var _ domrepo.ReportCache = (*CachedReportStore)(nil)

func NewCachedReportStore(c cache.Service, ttl time.Duration) *CachedReportStore {
	return &CachedReportStore{c: c, ttl: ttl}
}

func (s *CachedReportStore) Name() string { return "cache" }

// Consume stores the report and one entry per asset. Failed ticks leave the previous report in place.
func (s *CachedReportStore) Consume(ctx context.Context, report *models.TickReport) error {
	if report.Failed() {
		return nil
	}
	values := make(map[string]interface{}, len(report.Rows)+1)
	values[latestReportKey] = report
	for _, row := range report.Rows {
		values[quoteKey(row.Quote.ID)] = row
	}
	if err := s.c.MSet(ctx, values, s.ttl); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

func (s *CachedReportStore) Latest(ctx context.Context) (*models.TickReport, error) {
	var r models.TickReport
	if err := s.c.Get(ctx, latestReportKey, &r); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrNoReport
		}
		return nil, err
	}
	return &r, nil
}

func (s *CachedReportStore) Asset(ctx context.Context, id string) (*models.AssetReport, error) {
	var row models.AssetReport
	if err := s.c.Get(ctx, quoteKey(id), &row); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrNoReport
		}
		return nil, err
	}
	return &row, nil
}

func quoteKey(id string) string { return cache.GenerateKey("quote", id) }
