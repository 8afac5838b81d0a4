package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CryptoPulse/internal/domain/models"
	domrepo "CryptoPulse/internal/domain/repository"
	pkgch "CryptoPulse/pkg/clickhouse"
	applogger "CryptoPulse/pkg/logger"
)

const snapshotColumns = "ts, tick, asset_id, symbol, currency, price, change_24h, change_7d, market_cap, signal, sentiment"

// CHSnapshotStore archives one row per quote per successful tick.
type CHSnapshotStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.SnapshotStore = (*CHSnapshotStore)(nil)

func NewCHSnapshotStore(ch *pkgch.Client, l *applogger.Logger) *CHSnapshotStore {
	return &CHSnapshotStore{db: ch.DB(), table: ch.Database() + ".quote_snapshots", l: l}
}

// SnapshotSchema returns the DDL for the snapshot table in db.
func SnapshotSchema(db string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.quote_snapshots (
	ts DateTime64(3, 'UTC'),
	tick UInt64,
	asset_id LowCardinality(String),
	symbol LowCardinality(String),
	currency LowCardinality(String),
	price Nullable(Float64),
	change_24h Nullable(Float64),
	change_7d Nullable(Float64),
	market_cap Nullable(Float64),
	signal LowCardinality(String),
	sentiment LowCardinality(String)
) ENGINE = MergeTree
PARTITION BY toYYYYMM(ts)
ORDER BY (asset_id, ts)
TTL toDateTime(ts) + INTERVAL 90 DAY`, db),
	}
}

func (s *CHSnapshotStore) Name() string { return "clickhouse" }

// Consume inserts the report's rows. Failed ticks carry no rows and are skipped.
func (s *CHSnapshotStore) Consume(ctx context.Context, report *models.TickReport) error {
	snaps := SnapshotsFromReport(report)
	if len(snaps) == 0 {
		return nil
	}
	q, args := buildSnapshotInsert(s.table, snaps)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse insert snapshots failed",
				applogger.Uint64("tick", report.Tick),
				applogger.Int("rows", len(snaps)),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("insert snapshots: %w", err)
	}
	return nil
}

// Query returns snapshots for assetID in [from, to], newest first.
func (s *CHSnapshotStore) Query(ctx context.Context, assetID string, from, to time.Time, limit int) ([]models.Snapshot, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE asset_id = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", snapshotColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, assetID, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse query snapshots failed", applogger.String("asset", assetID), applogger.Error(err))
		}
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]models.Snapshot, 0, limit)
	for rows.Next() {
		var snap models.Snapshot
		var price, change24, change7, mktcap sql.NullFloat64
		if err := rows.Scan(&snap.At, &snap.Tick, &snap.AssetID, &snap.Symbol, &snap.Currency,
			&price, &change24, &change7, &mktcap, &snap.Signal, &snap.Sentiment); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Price = nullFloat(price)
		snap.Change24h = nullFloat(change24)
		snap.Change7d = nullFloat(change7)
		snap.MarketCap = nullFloat(mktcap)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SnapshotsFromReport flattens a tick report into archive rows.
func SnapshotsFromReport(report *models.TickReport) []models.Snapshot {
	if report == nil || report.Failed() {
		return nil
	}
	out := make([]models.Snapshot, 0, len(report.Rows))
	for _, row := range report.Rows {
		q := row.Quote
		snap := models.Snapshot{
			At:        report.At.UTC(),
			Tick:      report.Tick,
			AssetID:   q.ID,
			Symbol:    q.Symbol,
			Currency:  report.Currency,
			Change24h: q.Change24h,
			Change7d:  q.Change7d,
		}
		if q.Price.Valid {
			snap.Price = models.Float(q.Price.Decimal.InexactFloat64())
		}
		if q.MarketCap.Valid {
			snap.MarketCap = models.Float(q.MarketCap.Decimal.InexactFloat64())
		}
		if row.Signal != nil {
			snap.Signal = string(row.Signal.Kind)
		}
		if row.Sentiment != nil {
			snap.Sentiment = string(row.Sentiment.Kind)
		}
		out = append(out, snap)
	}
	return out
}

func buildSnapshotInsert(table string, snaps []models.Snapshot) (string, []interface{}) {
	values := make([]string, 0, len(snaps))
	args := make([]interface{}, 0, len(snaps)*11)
	for _, s := range snaps {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			s.At, s.Tick, s.AssetID, s.Symbol, s.Currency,
			s.Price, s.Change24h, s.Change7d, s.MarketCap,
			s.Signal, s.Sentiment,
		)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, snapshotColumns, strings.Join(values, ","))
	return q, args
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float(v.Float64)
}
