package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

// monthCacheRow is the hosted-table representation of a MonthEntry. Records
// are stored as a JSON blob; RecordCount and LastUpdated are lifted into
// columns so summaries never decode the blob.
type monthCacheRow struct {
	MonthKey    string    `gorm:"primaryKey;size:7;column:month_key"`
	Records     []byte    `gorm:"type:longblob"`
	RecordCount int       `gorm:"column:record_count"`
	LastUpdated time.Time `gorm:"column:last_updated"`
}

func (monthCacheRow) TableName() string { return "month_cache_entries" }

// consolidatedRow holds the single consolidated-summary row (ID is always 1).
type consolidatedRow struct {
	ID      uint   `gorm:"primaryKey"`
	Payload []byte `gorm:"type:blob"`
}

func (consolidatedRow) TableName() string { return "consolidated_summaries" }

// DatabaseBackend stores month entries in a MySQL table via gorm.
type DatabaseBackend struct {
	db *gorm.DB
}

// NewDatabaseBackend opens the MySQL connection from DB_* environment
// variables and migrates the cache tables.
func NewDatabaseBackend() (*DatabaseBackend, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stderr, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:      logger.Error,
				SlowThreshold: time.Second,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return NewDatabaseBackendWithDB(db)
}

// NewDatabaseBackendWithDB wraps an existing gorm connection (for tests or
// callers that manage their own pool).
func NewDatabaseBackendWithDB(db *gorm.DB) (*DatabaseBackend, error) {
	if err := db.AutoMigrate(&monthCacheRow{}, &consolidatedRow{}); err != nil {
		return nil, fmt.Errorf("migrate cache tables: %w", err)
	}
	return &DatabaseBackend{db: db}, nil
}

// Read returns the stored entry for key or nil if absent. A row whose blob
// fails to decode is deleted and reported as absent.
func (b *DatabaseBackend) Read(key monthkey.Key) (*MonthEntry, error) {
	var row monthCacheRow
	err := b.db.First(&row, "month_key = ?", key.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry := &MonthEntry{
		Key:         key,
		RecordCount: row.RecordCount,
		LastUpdated: row.LastUpdated,
	}
	if err := json.Unmarshal(row.Records, &entry.Records); err != nil {
		b.db.Delete(&monthCacheRow{}, "month_key = ?", key.String())
		return nil, nil
	}
	return entry, nil
}

// Write upserts the row for the entry's key (whole-row replacement).
func (b *DatabaseBackend) Write(entry *MonthEntry) error {
	data, err := json.Marshal(entry.Records)
	if err != nil {
		return err
	}
	row := monthCacheRow{
		MonthKey:    entry.Key.String(),
		Records:     data,
		RecordCount: entry.RecordCount,
		LastUpdated: entry.LastUpdated,
	}
	// Save's update-then-create fallback breaks on MySQL when rewriting an
	// identical row (0 rows affected falls through to a duplicate-key insert),
	// so upsert explicitly.
	return b.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// Delete removes the row for key, if any.
func (b *DatabaseBackend) Delete(key monthkey.Key) error {
	return b.db.Delete(&monthCacheRow{}, "month_key = ?", key.String()).Error
}

// Keys returns the stored month keys.
func (b *DatabaseBackend) Keys() ([]monthkey.Key, error) {
	var raw []string
	if err := b.db.Model(&monthCacheRow{}).Pluck("month_key", &raw).Error; err != nil {
		return nil, err
	}
	keys := make([]monthkey.Key, 0, len(raw))
	for _, s := range raw {
		key, err := monthkey.Parse(s)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Clear truncates both cache tables.
func (b *DatabaseBackend) Clear() error {
	if err := b.db.Where("1 = 1").Delete(&monthCacheRow{}).Error; err != nil {
		return err
	}
	return b.db.Where("1 = 1").Delete(&consolidatedRow{}).Error
}

// ReadConsolidated returns the stored consolidated summary or nil.
func (b *DatabaseBackend) ReadConsolidated() (*ConsolidatedSummary, error) {
	var row consolidatedRow
	err := b.db.First(&row, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s ConsolidatedSummary
	if err := json.Unmarshal(row.Payload, &s); err != nil {
		b.db.Delete(&consolidatedRow{}, "id = ?", 1)
		return nil, nil
	}
	return &s, nil
}

// WriteConsolidated replaces the consolidated-summary row.
func (b *DatabaseBackend) WriteConsolidated(summary *ConsolidatedSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return b.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&consolidatedRow{ID: 1, Payload: data}).Error
}
