package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/clock"
	"github.com/fleetops/couriertrack/internal/config"
	courierrepo "github.com/fleetops/couriertrack/internal/courier/repository"
	"github.com/fleetops/couriertrack/internal/distance/cache"
	"github.com/fleetops/couriertrack/internal/distance/domain"
	distancerepo "github.com/fleetops/couriertrack/internal/distance/repository"
	"github.com/fleetops/couriertrack/internal/geo"
	courierdomain "github.com/fleetops/couriertrack/internal/courier/domain"
	locationdomain "github.com/fleetops/couriertrack/internal/location/domain"
	locationrepo "github.com/fleetops/couriertrack/internal/location/repository"
	"github.com/glebarez/sqlite"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error

	prepareSchema(t, db)
	return db
}

func prepareSchema(t *testing.T, db *gorm.DB) {
	t.Helper()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS couriers (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone_number TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			id INTEGER PRIMARY KEY,
			courier_id INTEGER NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			timestamp DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS courier_distances (
			id INTEGER PRIMARY KEY,
			courier_id INTEGER NOT NULL UNIQUE,
			total_distance REAL NOT NULL DEFAULT 0,
			updated_at DATETIME
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}
}

func seedCourier(t *testing.T, db *gorm.DB, id snowflake.ID) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO couriers (id, name, email, phone_number, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, "Test Courier", "courier@example.com", "", "{}", time.Now().UTC(), time.Now().UTC(),
	).Error
	if err != nil {
		t.Fatalf("seed courier: %v", err)
	}
}

func newTestCache(t *testing.T) *cache.DistanceCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	holder := config.NewStaticTrackingConfigHolder(config.DefaultTrackingConfig())
	return cache.New(client, zap.NewNop(), holder)
}

func setupDistanceService(t *testing.T, node *snowflake.Node) (*Service, *gorm.DB) {
	holder := config.NewStaticTrackingConfigHolder(config.DefaultTrackingConfig())
	return setupDistanceServiceWith(t, node, cache.New(nil, zap.NewNop(), holder))
}

func setupDistanceServiceWith(t *testing.T, node *snowflake.Node, distCache *cache.DistanceCache) (*Service, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         distancerepo.Provide(),
		LocationRepo: locationrepo.Provide(),
		CourierRepo:  courierrepo.Provide(),
		Cache:        distCache,
		Calculator:   geo.Euclidean{},
		Clock:        clock.NewFakeClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)),
	})
	return svc.(*Service), db
}

func insertSample(t *testing.T, svc *Service, db *gorm.DB, node *snowflake.Node, courierID snowflake.ID, lat, lon float64, ts time.Time) float64 {
	t.Helper()

	locRepo := locationrepo.Provide()
	var total float64
	err := db.Transaction(func(tx *gorm.DB) error {
		loc := locationdomain.Location{
			ID:        node.Generate(),
			CourierID: courierID,
			Latitude:  lat,
			Longitude: lon,
			Timestamp: ts,
		}
		if err := locRepo.Insert(context.Background(), tx, &loc); err != nil {
			return err
		}
		applied, err := svc.ApplyNewLocation(context.Background(), tx, courierID)
		if err != nil {
			return err
		}
		total = applied
		return nil
	})
	if err != nil {
		t.Fatalf("insert sample: %v", err)
	}
	return total
}

func TestIncrementalMatchesRecomputed(t *testing.T) {
	node := mustNode(t)
	svc, db := setupDistanceService(t, node)

	courierID := node.Generate()
	seedCourier(t, db, courierID)

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	path := [][2]float64{
		{40.9923307, 29.1244229},
		{40.9930000, 29.1250000},
		{40.9940000, 29.1260000},
		{40.9950000, 29.1280000},
		{40.9970000, 29.1300000},
	}

	var incremental float64
	for i, p := range path {
		incremental = insertSample(t, svc, db, node, courierID, p[0], p[1], base.Add(time.Duration(i)*time.Minute))
	}

	recomputed, err := svc.RecomputeTotalDistance(context.Background(), courierID.String())
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	if math.Abs(incremental-recomputed.Distance) > 1e-6 {
		t.Fatalf("incremental %v != recomputed %v", incremental, recomputed.Distance)
	}

	calc := geo.Euclidean{}
	var expected float64
	for i := 1; i < len(path); i++ {
		expected += calc.DistanceKm(
			geo.Coordinate{Lat: path[i-1][0], Lon: path[i-1][1]},
			geo.Coordinate{Lat: path[i][0], Lon: path[i][1]},
		)
	}
	if math.Abs(incremental-expected) > 1e-6 {
		t.Fatalf("incremental %v != expected %v", incremental, expected)
	}
}

func TestSingleSampleCreatesZeroAggregate(t *testing.T) {
	node := mustNode(t)
	svc, db := setupDistanceService(t, node)

	courierID := node.Generate()
	seedCourier(t, db, courierID)

	total := insertSample(t, svc, db, node, courierID, 40.99, 29.12, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	if total != 0 {
		t.Fatalf("expected zero total for a single sample, got %v", total)
	}

	record, err := distancerepo.Provide().Get(context.Background(), db, courierID)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if record == nil {
		t.Fatal("expected aggregate row after first sample")
	}
	if record.TotalDistance != 0 {
		t.Fatalf("expected zero aggregate, got %v", record.TotalDistance)
	}
}

func TestGetTotalTravelDistanceUnknownCourier(t *testing.T) {
	node := mustNode(t)
	svc, db := setupDistanceService(t, node)

	_, err := svc.GetTotalTravelDistance(context.Background(), node.Generate().String())
	if !errors.Is(err, courierdomain.ErrNotFound) {
		t.Fatalf("expected courier not found, got %v", err)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM courier_distances`).Scan(&count).Error; err != nil {
		t.Fatalf("count aggregates: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no aggregate rows, got %d", count)
	}
}

func TestGetTotalTravelDistanceColdRecompute(t *testing.T) {
	node := mustNode(t)
	svc, db := setupDistanceService(t, node)

	courierID := node.Generate()
	seedCourier(t, db, courierID)

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	points := [][2]float64{
		{40.9923307, 29.1244229},
		{40.9950000, 29.1280000},
		{40.9970000, 29.1300000},
	}
	for i, p := range points {
		err := db.Exec(
			`INSERT INTO locations (id, courier_id, latitude, longitude, timestamp) VALUES (?, ?, ?, ?, ?)`,
			node.Generate(), courierID, p[0], p[1], base.Add(time.Duration(i)*time.Minute),
		).Error
		if err != nil {
			t.Fatalf("seed location: %v", err)
		}
	}

	resp, err := svc.GetTotalTravelDistance(context.Background(), courierID.String())
	if err != nil {
		t.Fatalf("get total: %v", err)
	}
	if resp.Unit != "km" {
		t.Fatalf("expected km unit, got %q", resp.Unit)
	}

	calc := geo.Euclidean{}
	var expected float64
	for i := 1; i < len(points); i++ {
		expected += calc.DistanceKm(
			geo.Coordinate{Lat: points[i-1][0], Lon: points[i-1][1]},
			geo.Coordinate{Lat: points[i][0], Lon: points[i][1]},
		)
	}
	if math.Abs(resp.Distance-expected) > 1e-6 {
		t.Fatalf("recomputed %v != expected %v", resp.Distance, expected)
	}

	record, err := distancerepo.Provide().Get(context.Background(), db, courierID)
	if err != nil {
		t.Fatalf("get aggregate: %v", err)
	}
	if record == nil {
		t.Fatal("expected aggregate row after cold recompute")
	}
}

func TestReadBackfillsCacheAndShortCircuitsStore(t *testing.T) {
	node := mustNode(t)
	distCache := newTestCache(t)
	svc, db := setupDistanceServiceWith(t, node, distCache)

	courierID := node.Generate()
	seedCourier(t, db, courierID)

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	insertSample(t, svc, db, node, courierID, 40.9923307, 29.1244229, base)
	insertSample(t, svc, db, node, courierID, 40.9950000, 29.1280000, base.Add(time.Minute))

	if _, ok := distCache.Get(context.Background(), courierID); ok {
		t.Fatal("expected a cold cache before the first read")
	}

	first, err := svc.GetTotalTravelDistance(context.Background(), courierID.String())
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if first.Distance <= 0 {
		t.Fatalf("expected positive total, got %v", first.Distance)
	}

	cached, ok := distCache.Get(context.Background(), courierID)
	if !ok {
		t.Fatal("expected the miss to backfill the cache")
	}
	if math.Abs(cached-first.Distance) > 1e-9 {
		t.Fatalf("cached %v != returned %v", cached, first.Distance)
	}

	// Skew the aggregate row; the next read must come from the cache.
	if err := db.Exec(
		`UPDATE courier_distances SET total_distance = total_distance + 999 WHERE courier_id = ?`,
		courierID,
	).Error; err != nil {
		t.Fatalf("skew aggregate: %v", err)
	}

	second, err := svc.GetTotalTravelDistance(context.Background(), courierID.String())
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if math.Abs(second.Distance-first.Distance) > 1e-9 {
		t.Fatalf("expected cache hit %v, got store value %v", first.Distance, second.Distance)
	}
}

var _ domain.Service = (*Service)(nil)
