// Package cache stores conversion results in a SQLite database keyed by a
// hash of the input and the settings that produced them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Faultbox/brushmesh/pkg/convert"
)

// ErrCacheMiss is returned when no usable entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// formatVersion changes whenever the payload layout does. Entries written
// with another version are treated as misses.
const formatVersion = 1

// entry is the database row of one cached conversion.
type entry struct {
	Hash      string `gorm:"primaryKey"`
	Version   int
	Payload   []byte
	Meshes    int
	Triangles int
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (entry) TableName() string {
	return "conversions"
}

// Store is a conversion cache backed by SQLite.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open opens or creates the cache database at path.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrating cache %s: %w", path, err)
	}

	log.Debug("cache opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Key derives the cache key of an input document converted with the given
// settings. settings is serialized as YAML so any config struct works.
func Key(input []byte, settings any) (string, error) {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encoding cache settings: %w", err)
	}
	h := sha256.New()
	fmt.Fprintf(h, "brushmesh/%d\x00", formatVersion)
	h.Write(input)
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the cached result for key. Entity pointers of the result are
// nil. Returns ErrCacheMiss if there is no entry.
func (s *Store) Get(ctx context.Context, key string) (*convert.Result, error) {
	var e entry
	err := s.db.WithContext(ctx).First(&e, "hash = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	if e.Version != formatVersion {
		s.log.Debug("stale cache entry", zap.String("key", key), zap.Int("version", e.Version))
		return nil, ErrCacheMiss
	}

	res, err := decodeResult(e.Payload)
	if err != nil {
		s.log.Warn("corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, ErrCacheMiss
	}
	return res, nil
}

// Put stores res under key, replacing any existing entry.
func (s *Store) Put(ctx context.Context, key string, res *convert.Result) error {
	e := entry{
		Hash:      key,
		Version:   formatVersion,
		Payload:   encodeResult(res),
		Meshes:    res.Stats.Meshes,
		Triangles: res.Stats.Triangles,
	}
	// Upsert
	if err := s.db.WithContext(ctx).Save(&e).Error; err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	s.log.Debug("cache entry stored", zap.String("key", key), zap.Int("bytes", len(e.Payload)))
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&entry{}).Count(&n).Error
	return n, err
}

// Prune deletes entries not written within maxAge and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	tx := s.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&entry{})
	if tx.Error != nil {
		return 0, fmt.Errorf("pruning cache: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}
