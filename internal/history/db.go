package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// FileName is the SQLite database created inside the data directory
const FileName = "predictions.db"

// DB is the SQLite connection with its prepared statements
type DB struct {
	*sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex

	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// OpenDB opens (creating if needed) the history database under dataDir
func OpenDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		DB:           sqlDB,
		prepared:     make(map[string]*sql.Stmt),
		maxOpenConns: 8,
		maxIdleConns: 2,
		maxLifetime:  5 * time.Minute,
	}
	sqlDB.SetMaxOpenConns(db.maxOpenConns)
	sqlDB.SetMaxIdleConns(db.maxIdleConns)
	sqlDB.SetConnMaxLifetime(db.maxLifetime)

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.initPreparedStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("History database initialized", "path", dbPath)

	return db, nil
}

func (db *DB) migrate() error {
	queries := []string{
		// one row per served prediction; no client identifiers are stored
		`CREATE TABLE IF NOT EXISTS predictions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			fixed_acidity REAL NOT NULL,
			volatile_acidity REAL NOT NULL,
			citric_acid REAL NOT NULL,
			residual_sugar REAL NOT NULL,
			chlorides REAL NOT NULL,
			free_sulfur_dioxide REAL NOT NULL,
			total_sulfur_dioxide REAL NOT NULL,
			density REAL NOT NULL,
			ph REAL NOT NULL,
			sulphates REAL NOT NULL,
			alcohol REAL NOT NULL,
			score REAL NOT NULL,
			tier TEXT NOT NULL,
			created_at INTEGER NOT NULL -- unix nanoseconds, UTC
		)`,

		`CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_tier ON predictions(tier)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_prediction": `INSERT INTO predictions (
			id, source, fixed_acidity, volatile_acidity, citric_acid, residual_sugar,
			chlorides, free_sulfur_dioxide, total_sulfur_dioxide, density, ph,
			sulphates, alcohol, score, tier, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,

		"recent_predictions": `SELECT id, source, fixed_acidity, volatile_acidity, citric_acid, residual_sugar,
			chlorides, free_sulfur_dioxide, total_sulfur_dioxide, density, ph,
			sulphates, alcohol, score, tier, created_at
			FROM predictions ORDER BY created_at DESC LIMIT ?`,

		"tier_counts": `SELECT tier, COUNT(*) FROM predictions GROUP BY tier`,

		"prune_predictions": `DELETE FROM predictions WHERE created_at < ?`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	stats := db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": db.maxOpenConns,
		"max_idle_connections": db.maxIdleConns,
		"max_lifetime_seconds": db.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// Close closes the prepared statements and the connection
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
