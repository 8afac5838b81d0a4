package repository

import (
	"context"
	"time"

	"CryptoPulse/internal/domain/models"
)

// SnapshotStore archives per-tick quote snapshots and reads them back.
type SnapshotStore interface {
	ReportSink
	Query(ctx context.Context, assetID string, from, to time.Time, limit int) ([]models.Snapshot, error)
	Health(ctx context.Context) error
}
