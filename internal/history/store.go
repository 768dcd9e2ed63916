// Package history persists completed diagnostic runs in a local sqlite
// database so past results survive the process and can be compared over
// time.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/VividCortex/ewma"
	_ "modernc.org/sqlite"

	"github.com/felipecaninnovaes/diagnostico-de-rede/internal/logging"
	diagerr "github.com/felipecaninnovaes/diagnostico-de-rede/pkg/errors"
	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/types"
)

const cleanupInterval = 1 * time.Hour

// RunSummary is the lightweight per-run row used by listings. The full
// report is stored alongside as JSON and loaded only on demand.
type RunSummary struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	Provider      string    `json:"provider,omitempty"`
	TargetCount   int       `json:"target_count"`
	SuccessRate   float64   `json:"success_rate"`
	OverallStatus string    `json:"overall_status"`
}

// TargetStats aggregates the stored measurements of one target across runs.
// SmoothedLatency is an exponentially weighted moving average, so recent
// runs dominate older ones.
type TargetStats struct {
	Target          string  `json:"target"`
	Samples         int     `json:"samples"`
	SmoothedLatency float64 `json:"smoothed_latency_ms"`
	AvgLossPercent  float64 `json:"avg_loss_percent"`
	SuccessRate     float64 `json:"success_rate"`
}

type Store struct {
	db        *sql.DB
	maxRuns   int
	log       *logging.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func Open(dbPath string, maxRuns int) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, diagerr.ErrStoreFailure("create history directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, diagerr.ErrStoreFailure("open sqlite", err)
	}

	db.SetMaxOpenConns(3)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, diagerr.ErrStoreFailure("ping sqlite", err)
	}

	// modernc.org/sqlite requires explicit PRAGMAs (not query-string params)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, diagerr.ErrStoreFailure("set WAL mode", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, diagerr.ErrStoreFailure("set busy_timeout", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, diagerr.ErrStoreFailure("migrate", err)
	}

	s := &Store{
		db:      db,
		maxRuns: maxRuns,
		log:     logging.NewLogger("history"),
		stopCh:  make(chan struct{}),
	}

	s.cleanup()

	s.wg.Add(1)
	go s.cleanupLoop()

	return s, nil
}

func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		if err := s.db.Close(); err != nil {
			s.log.Warn("close failed", logging.Field{Key: "error", Value: err})
		}
	})
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP NOT NULL,
		provider TEXT NOT NULL DEFAULT '',
		target_count INTEGER NOT NULL,
		success_rate REAL NOT NULL,
		overall_status TEXT NOT NULL,
		report_json TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS target_results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		target TEXT NOT NULL,
		ping_status TEXT NOT NULL,
		loss_percent REAL NOT NULL,
		avg_latency_ms REAL NOT NULL,
		hop_count INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		return err
	}
	if _, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`); err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_target_results_target ON target_results(target)`)
	return err
}

// Save stores one completed report, both as queryable per-target rows and
// as the full JSON document.
func (s *Store) Save(report *types.Report) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return diagerr.ErrStoreFailure("encode report", err)
	}

	provider := ""
	if report.ISP != nil {
		provider = report.ISP.Provider
	}

	tx, err := s.db.Begin()
	if err != nil {
		return diagerr.ErrStoreFailure("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, completed_at, provider, target_count,
			success_rate, overall_status, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.StartedAt.UTC(), report.CompletedAt.UTC(), provider,
		len(report.Tests), report.Summary.SuccessRate, report.Summary.OverallStatus,
		string(doc),
	)
	if err != nil {
		return diagerr.ErrStoreFailure("insert run", err)
	}

	for _, test := range report.Tests {
		var status types.TestStatus = types.StatusFailed
		var loss, latency float64
		if test.Ping != nil {
			status = test.Ping.Status
			loss = test.Ping.PacketLossPercent
			latency = test.Ping.AvgTime
		}
		hops := 0
		if test.Traceroute != nil {
			hops = test.Traceroute.TotalHops
		}
		_, err = tx.Exec(
			`INSERT INTO target_results (run_id, target, ping_status, loss_percent,
				avg_latency_ms, hop_count)
			VALUES (?, ?, ?, ?, ?, ?)`,
			report.RunID, test.Target, string(status), loss, latency, hops,
		)
		if err != nil {
			return diagerr.ErrStoreFailure("insert target result", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return diagerr.ErrStoreFailure("commit run", err)
	}
	return nil
}

// Get loads the full report of one run. Returns nil without error when the
// run is not stored.
func (s *Store) Get(runID string) (*types.Report, error) {
	var doc string
	err := s.db.QueryRow(`SELECT report_json FROM runs WHERE id = ?`, runID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, diagerr.ErrStoreFailure("query run", err)
	}
	var report types.Report
	if err := json.Unmarshal([]byte(doc), &report); err != nil {
		return nil, diagerr.ErrStoreFailure("decode stored report", err)
	}
	return &report, nil
}

// RecentRuns lists the newest runs, most recent first.
func (s *Store) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, completed_at, provider, target_count,
			success_rate, overall_status
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, diagerr.ErrStoreFailure("query runs", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.CompletedAt, &r.Provider,
			&r.TargetCount, &r.SuccessRate, &r.OverallStatus); err != nil {
			return nil, diagerr.ErrStoreFailure("scan run", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StatsForTarget folds the stored measurements of one target, oldest first,
// into an EWMA latency and a mean loss figure. Failed pings contribute loss
// but not latency.
func (s *Store) StatsForTarget(target string) (*TargetStats, error) {
	rows, err := s.db.Query(
		`SELECT t.ping_status, t.loss_percent, t.avg_latency_ms
		FROM target_results t JOIN runs r ON r.id = t.run_id
		WHERE t.target = ? ORDER BY r.started_at ASC`, target)
	if err != nil {
		return nil, diagerr.ErrStoreFailure("query target results", err)
	}
	defer rows.Close()

	stats := &TargetStats{Target: target}
	avg := ewma.NewMovingAverage()
	var lossSum float64
	succeeded := 0
	for rows.Next() {
		var status string
		var loss, latency float64
		if err := rows.Scan(&status, &loss, &latency); err != nil {
			return nil, diagerr.ErrStoreFailure("scan target result", err)
		}
		stats.Samples++
		lossSum += loss
		if status == string(types.StatusSuccess) {
			succeeded++
		}
		if latency > 0 {
			avg.Add(latency)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, diagerr.ErrStoreFailure("iterate target results", err)
	}
	if stats.Samples > 0 {
		stats.AvgLossPercent = lossSum / float64(stats.Samples)
		stats.SuccessRate = float64(succeeded) / float64(stats.Samples) * 100
	}
	stats.SmoothedLatency = avg.Value()
	return stats, nil
}

func (s *Store) cleanup() {
	if s.maxRuns <= 0 {
		return
	}
	res, err := s.db.Exec(
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)`, s.maxRuns)
	if err != nil {
		s.log.Warn("cleanup failed", logging.Field{Key: "error", Value: err})
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		// Orphan rows: sqlite only enforces the CASCADE with foreign_keys on.
		if _, err := s.db.Exec(
			`DELETE FROM target_results WHERE run_id NOT IN (SELECT id FROM runs)`); err != nil {
			s.log.Warn("orphan cleanup failed", logging.Field{Key: "error", Value: err})
		}
		s.log.Info("history cleanup: trimmed to max",
			logging.Field{Key: "removed", Value: n},
			logging.Field{Key: "max", Value: s.maxRuns})
	}
}

func (s *Store) cleanupLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}
