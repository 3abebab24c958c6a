// Package store provides persistence for profiles, health samples,
// check-ins, and the dispense ledger, backed by SQLite for durable rows
// and BadgerDB for expiring daily counters.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dosepilot/dosepilot/internal/config"
	"github.com/dosepilot/dosepilot/internal/models"
)

// Store provides unified access to SQLite and BadgerDB
type Store struct {
	db     *gorm.DB
	badger *badger.DB
	config *config.StorageConfig
}

// New creates a new Store instance
func New(cfg *config.Config) (*Store, error) {
	sqlitePath := cfg.Storage.SQLitePath
	if sqlitePath == "" {
		sqlitePath = filepath.Join(cfg.Storage.DataDir, "dosepilot.db")
	}

	// Open SQLite with optimizations
	sqliteDB, err := sql.Open("sqlite", sqlitePath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-64000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if err := db.AutoMigrate(
		&UserProfile{},
		&HealthSample{},
		&CheckInRecord{},
		&DispenseLog{},
		&SupplementUsage{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	badgerPath := cfg.Storage.BadgerPath
	if badgerPath == "" {
		badgerPath = filepath.Join(cfg.Storage.DataDir, "badger")
	}

	badgerOpts := badger.DefaultOptions(badgerPath).
		WithLogger(nil). // Disable verbose logging
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20). // 16MB value log files
		WithMemTableSize(16 << 20)      // 16MB memtable

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &Store{
		db:     db,
		badger: badgerDB,
		config: &cfg.Storage,
	}, nil
}

// Close closes all database connections
func (s *Store) Close() error {
	return s.badger.Close()
}

// DB returns the GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Badger returns the BadgerDB instance
func (s *Store) Badger() *badger.DB {
	return s.badger
}

// ==================== Profile Methods ====================

// SaveProfile creates or updates a user profile.
func (s *Store) SaveProfile(p *models.Profile) error {
	row := ProfileRow(p)
	return s.db.Save(row).Error
}

// ListUserIDs returns every user with a stored profile.
func (s *Store) ListUserIDs() ([]string, error) {
	var ids []string
	err := s.db.Model(&UserProfile{}).Order("user_id").Pluck("user_id", &ids).Error
	return ids, err
}

// GetProfile retrieves a user profile, nil when none exists yet.
func (s *Store) GetProfile(userID string) (*models.Profile, error) {
	var row UserProfile
	if err := s.db.First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.ToProfile(), nil
}

// ==================== Health Sample Methods ====================

// UpsertSample stores one day of metrics, replacing an earlier sample
// for the same user-day so re-syncs do not duplicate rows.
func (s *Store) UpsertSample(userID, source string, snap *models.Snapshot) error {
	row := SampleRow(userID, source, snap)

	var existing HealthSample
	err := s.db.First(&existing, "user_id = ? AND date = ?", userID, row.Date).Error
	if err == nil {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		return s.db.Save(row).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.Create(row).Error
}

// LatestSample returns the most recent snapshot, nil when none exist.
func (s *Store) LatestSample(userID string) (*models.Snapshot, error) {
	var row HealthSample
	err := s.db.Where("user_id = ?", userID).Order("date DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.ToSnapshot(), nil
}

// RecentSamples returns up to limit snapshots, newest first.
func (s *Store) RecentSamples(userID string, limit int) ([]*models.Snapshot, error) {
	var rows []HealthSample
	err := s.db.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	snaps := make([]*models.Snapshot, 0, len(rows))
	for i := range rows {
		snaps = append(snaps, rows[i].ToSnapshot())
	}
	return snaps, nil
}

// baselineWindowDays is the rolling window the baseline is computed over.
const baselineWindowDays = 14

// ComputeBaseline computes per-metric mean and standard deviation over
// the recent sample window. It returns nil when fewer than
// models.MinBaselineSamples samples exist: a baseline built on one or
// two days would make every ordinary fluctuation look like a deviation.
func (s *Store) ComputeBaseline(userID string, now time.Time) (*models.Baseline, error) {
	since := DayOf(now).AddDate(0, 0, -baselineWindowDays)

	var rows []HealthSample
	err := s.db.Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) < models.MinBaselineSamples {
		return nil, nil
	}

	metrics := []string{
		models.MetricHRV,
		models.MetricSleepScore,
		models.MetricSleepDuration,
		models.MetricDeepSleepPct,
		models.MetricSleepLatency,
		models.MetricRecoveryScore,
		models.MetricStrain,
		models.MetricRestingHR,
	}

	base := &models.Baseline{
		SampleCount: len(rows),
		ComputedAt:  now,
		Stats:       make(map[string]models.Stat),
	}

	for _, metric := range metrics {
		var values []float64
		for i := range rows {
			snap := rows[i].ToSnapshot()
			if v, ok := snap.Metric(metric); ok {
				values = append(values, v)
			}
		}
		// A metric needs its own minimum sample count: a watch that
		// only reported HRV twice has no HRV baseline yet.
		if len(values) < models.MinBaselineSamples {
			continue
		}
		base.Stats[metric] = meanStd(values)
	}

	return base, nil
}

func meanStd(values []float64) models.Stat {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return models.Stat{
		Mean: mean,
		Std:  math.Sqrt(sq / float64(len(values))),
	}
}

// ==================== Check-in Methods ====================

// CreateCheckIn stores a daily check-in.
func (s *Store) CreateCheckIn(userID string, now time.Time, ci *models.CheckIn) (*CheckInRecord, error) {
	rec := &CheckInRecord{
		UserID:       userID,
		Date:         DayOf(now),
		EnergyLevel:  ci.EnergyLevel,
		StressLevel:  ci.StressLevel,
		SleepQuality: ci.SleepQuality,
		Mood:         ci.Mood,
		Focus:        ci.Focus,
	}
	if err := s.db.Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// TodayCheckIn returns the latest check-in recorded today, nil when the
// user has not checked in yet.
func (s *Store) TodayCheckIn(userID string, now time.Time) (*models.CheckIn, error) {
	var rec CheckInRecord
	err := s.db.Where("user_id = ? AND date = ?", userID, DayOf(now)).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec.ToCheckIn(), nil
}

// ==================== Dispense Ledger Methods ====================

// CreateDispense records dispensed doses and invalidates the cached
// daily totals for the user. All doses of one dispense commit together.
func (s *Store) CreateDispense(userID string, logs []DispenseLog) error {
	if len(logs) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range logs {
			logs[i].UserID = userID
			if err := tx.Create(&logs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.invalidateLedger(userID)
}

// DispensedToday sums dispensed units per supplement for the user's
// current day, served from the Badger cache when fresh.
func (s *Store) DispensedToday(userID string, now time.Time) (map[string]float64, error) {
	if cached, ok := s.ledgerFromCache(userID, now); ok {
		return cached, nil
	}

	day := DayOf(now)
	var rows []DispenseLog
	err := s.db.Where("user_id = ? AND dispensed_at >= ? AND dispensed_at < ?",
		userID, day, day.AddDate(0, 0, 1)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64, len(rows))
	for i := range rows {
		totals[rows[i].SupplementID] += rows[i].Dose
	}
	s.cacheLedger(userID, now, totals)
	return totals, nil
}

// DispensesToday returns the raw dispense rows for the current day,
// newest first.
func (s *Store) DispensesToday(userID string, now time.Time) ([]DispenseLog, error) {
	day := DayOf(now)
	var rows []DispenseLog
	err := s.db.Where("user_id = ? AND dispensed_at >= ? AND dispensed_at < ?",
		userID, day, day.AddDate(0, 0, 1)).
		Order("dispensed_at DESC").
		Find(&rows).Error
	return rows, err
}

// ==================== Usage Streak Methods ====================

// TouchUsage bumps the consecutive-day streak for a supplement. A use
// on the day after the last one extends the streak, a same-day use is
// a no-op, anything longer restarts at one.
func (s *Store) TouchUsage(userID, supplementID string, now time.Time) error {
	day := DayOf(now)

	var usage SupplementUsage
	err := s.db.First(&usage, "user_id = ? AND supplement_id = ?", userID, supplementID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		usage = SupplementUsage{
			UserID:          userID,
			SupplementID:    supplementID,
			ConsecutiveDays: 1,
			LastUsedDate:    day,
		}
		return s.db.Create(&usage).Error
	}
	if err != nil {
		return err
	}

	last := DayOf(usage.LastUsedDate)
	switch {
	case day.Equal(last):
		return nil
	case day.Equal(last.AddDate(0, 0, 1)):
		usage.ConsecutiveDays++
	default:
		usage.ConsecutiveDays = 1
	}
	usage.LastUsedDate = day
	return s.db.Save(&usage).Error
}

// ConsecutiveDays returns current streaks per supplement. A streak
// whose last use is older than yesterday has already broken and is
// reported as zero.
func (s *Store) ConsecutiveDays(userID string, now time.Time) (map[string]int, error) {
	var rows []SupplementUsage
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	yesterday := DayOf(now).AddDate(0, 0, -1)
	streaks := make(map[string]int, len(rows))
	for i := range rows {
		if DayOf(rows[i].LastUsedDate).Before(yesterday) {
			streaks[rows[i].SupplementID] = 0
			continue
		}
		streaks[rows[i].SupplementID] = rows[i].ConsecutiveDays
	}
	return streaks, nil
}

// RolloverUsage resets streaks whose last use is older than yesterday.
// The midnight job runs it so stale streaks do not linger in the table.
func (s *Store) RolloverUsage(now time.Time) (int64, error) {
	yesterday := DayOf(now).AddDate(0, 0, -1)
	res := s.db.Model(&SupplementUsage{}).
		Where("last_used_date < ? AND consecutive_days > 0", yesterday).
		Update("consecutive_days", 0)
	return res.RowsAffected, res.Error
}
