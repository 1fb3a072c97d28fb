package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/store/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// storeRecord matches the seed file format: [{"name": ..., "lat": ..., "lng": ...}].
type storeRecord struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Loader seeds the stores table from a JSON file on startup. Seeding is
// skipped when stores already exist.
type Loader struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	path  string
}

func New(db *gorm.DB, log *zap.Logger, genID *snowflake.Node, repo domain.Repository, path string) *Loader {
	return &Loader{
		db:    db,
		log:   log.Named("store.loader"),
		genID: genID,
		repo:  repo,
		path:  path,
	}
}

func (l *Loader) Run(ctx context.Context) error {
	count, err := l.repo.Count(ctx, l.db)
	if err != nil {
		return fmt.Errorf("count stores: %w", err)
	}
	if count > 0 {
		l.log.Info("store data already present, skipping seed", zap.Int64("count", count))
		return nil
	}

	records, err := l.readRecords()
	if err != nil {
		return err
	}

	stores := make([]domain.Store, 0, len(records))
	for _, record := range records {
		stores = append(stores, domain.Store{
			ID:        l.genID.Generate(),
			Name:      record.Name,
			Latitude:  record.Lat,
			Longitude: record.Lng,
		})
	}

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := l.repo.InsertAll(loadCtx, l.db, stores); err != nil {
		return fmt.Errorf("seed stores: %w", err)
	}

	l.log.Info("store data loaded", zap.Int("count", len(stores)), zap.String("file", l.path))
	return nil
}

func (l *Loader) readRecords() ([]storeRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read store data file %s: %w", l.path, err)
	}

	var records []storeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse store data file %s: %w", l.path, err)
	}
	return records, nil
}
