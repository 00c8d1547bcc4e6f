package cache

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/posterior"
	_ "modernc.org/sqlite"
)

// samplesEntry is one cached posterior document
type samplesEntry struct {
	Key         string `column:"cache_key" dbtype:"TEXT NOT NULL" primary:"true"`
	Version     string `column:"source_version" dbtype:"TEXT NOT NULL"`
	Fingerprint string `column:"fingerprint" dbtype:"TEXT NOT NULL" index:"true"`
	Payload     string `column:"payload" dbtype:"TEXT NOT NULL"`
	CreatedAt   int64  `column:"created_at" dbtype:"INTEGER NOT NULL"`
}

func (e *samplesEntry) GetTableName() string {
	return "posterior_samples"
}

func (e *samplesEntry) GetPrimaryKey() map[string]any {
	return map[string]any{"cache_key": e.Key}
}

// SQLiteCache is a Cache persisted to a SQLite database file.
// A path of ":memory:" gives a private in-memory database.
type SQLiteCache struct {
	db *sql.DB
}

var _ Cache = (*SQLiteCache)(nil)

// OpenSQLite opens (creating if needed) the cache database at path
func OpenSQLite(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := createTable(db, &samplesEntry{}); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Posterior cache initialized", path)
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func (c *SQLiteCache) Get(key string) (*Entry, bool, error) {
	row := &samplesEntry{Key: key}
	if err := findByPrimaryKey(c.db, row); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	samples, err := posterior.Decode(bytes.NewReader([]byte(row.Payload)))
	if err != nil {
		return nil, false, fmt.Errorf("cached samples for %s are corrupt: %w", key, err)
	}
	return &Entry{Samples: samples, Version: row.Version, Fingerprint: row.Fingerprint}, true, nil
}

func (c *SQLiteCache) Put(key string, entry *Entry) error {
	if entry == nil || entry.Samples == nil {
		return fmt.Errorf("cannot cache nil samples for %s", key)
	}
	payload, err := json.Marshal(entry.Samples)
	if err != nil {
		return fmt.Errorf("failed to encode samples: %w", err)
	}
	fingerprint := entry.Fingerprint
	if fingerprint == "" {
		if fingerprint, err = entry.Samples.Fingerprint(); err != nil {
			return err
		}
	}
	return save(c.db, &samplesEntry{
		Key:         key,
		Version:     entry.Version,
		Fingerprint: fingerprint,
		Payload:     string(payload),
		CreatedAt:   time.Now().Unix(),
	})
}

// Delete removes a cached entry, if present
func (c *SQLiteCache) Delete(key string) error {
	return deleteRow(c.db, &samplesEntry{Key: key})
}
