package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/fleetops/couriertrack/internal/config"
	courierdomain "github.com/fleetops/couriertrack/internal/courier/domain"
	courierrepo "github.com/fleetops/couriertrack/internal/courier/repository"
	entrancerepo "github.com/fleetops/couriertrack/internal/entrance/repository"
	"github.com/fleetops/couriertrack/internal/geo"
	storerepo "github.com/fleetops/couriertrack/internal/store/repository"
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
		`CREATE TABLE IF NOT EXISTS stores (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS store_entrances (
			id INTEGER PRIMARY KEY,
			courier_id INTEGER NOT NULL,
			store_id INTEGER NOT NULL,
			entrance_time DATETIME NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}
	return db
}

func seedStore(t *testing.T, db *gorm.DB, id snowflake.ID, name string, lat, lon float64) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO stores (id, name, latitude, longitude) VALUES (?, ?, ?, ?)`,
		id, name, lat, lon,
	).Error
	if err != nil {
		t.Fatalf("seed store: %v", err)
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

func newTestLocker(t *testing.T) *Locker {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client)
}

func setupEntranceService(t *testing.T, node *snowflake.Node) (*Service, *gorm.DB) {
	return setupEntranceServiceWith(t, node, nil)
}

func setupEntranceServiceWith(t *testing.T, node *snowflake.Node, locker *Locker) (*Service, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	holder := config.NewStaticTrackingConfigHolder(config.DefaultTrackingConfig())

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        entrancerepo.Provide(),
		StoreRepo:   storerepo.Provide(),
		CourierRepo: courierrepo.Provide(),
		Calc:        geo.Euclidean{},
		Tracking:    holder,
		Locker:      locker,
	})
	return svc.(*Service), db
}

func TestEntranceDetectedWithinRadius(t *testing.T) {
	node := mustNode(t)
	svc, db := setupEntranceService(t, node)

	storeID := node.Generate()
	seedStore(t, db, storeID, "Ataşehir MMM Migros", 40.9923307, 29.1244229)

	courierID := node.Generate()
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	detection, err := svc.CheckEntrance(context.Background(), courierID, 40.9923307, 29.1244229, at)
	if err != nil {
		t.Fatalf("check entrance: %v", err)
	}
	if detection == nil {
		t.Fatal("expected entrance at store coordinates")
	}
	if detection.StoreName != "Ataşehir MMM Migros" {
		t.Fatalf("unexpected store name %q", detection.StoreName)
	}
	if detection.StoreID != storeID {
		t.Fatalf("unexpected store id %v", detection.StoreID)
	}
}

func TestEntranceCooldownSuppressesDuplicates(t *testing.T) {
	node := mustNode(t)
	svc, db := setupEntranceService(t, node)

	seedStore(t, db, node.Generate(), "Novada MMM Migros", 40.986106, 29.1161293)

	courierID := node.Generate()
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	first, err := svc.CheckEntrance(context.Background(), courierID, 40.986106, 29.1161293, at)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if first == nil {
		t.Fatal("expected first entrance")
	}

	second, err := svc.CheckEntrance(context.Background(), courierID, 40.986106, 29.1161293, at.Add(30*time.Second))
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if second != nil {
		t.Fatalf("expected cooldown to suppress entrance, got %v", second.StoreName)
	}

	third, err := svc.CheckEntrance(context.Background(), courierID, 40.986106, 29.1161293, at.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("third check: %v", err)
	}
	if third == nil {
		t.Fatal("expected new entrance after cooldown expiry")
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM store_entrances WHERE courier_id = ?`, courierID).Scan(&count).Error; err != nil {
		t.Fatalf("count entrances: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 entrances, got %d", count)
	}
}

func TestNoEntranceOutsideRadius(t *testing.T) {
	node := mustNode(t)
	svc, db := setupEntranceService(t, node)

	seedStore(t, db, node.Generate(), "Ortaköy MMM Migros", 41.055783, 29.0210292)

	courierID := node.Generate()
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	// Roughly 1.1 km north of the store.
	detection, err := svc.CheckEntrance(context.Background(), courierID, 41.0657830, 29.0210292, at)
	if err != nil {
		t.Fatalf("check entrance: %v", err)
	}
	if detection != nil {
		t.Fatalf("expected no entrance outside the radius, got %v", detection.StoreName)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM store_entrances`).Scan(&count).Error; err != nil {
		t.Fatalf("count entrances: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no entrances, got %d", count)
	}
}

func TestCooldownUsesSampleTimestampsNotWallClock(t *testing.T) {
	node := mustNode(t)
	svc, db := setupEntranceServiceWith(t, node, newTestLocker(t))

	seedStore(t, db, node.Generate(), "Novada MMM Migros", 40.986106, 29.1161293)

	courierID := node.Generate()
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	// All three samples arrive back to back; only their timestamps advance.
	// The cooldown is defined on sample time, so the redis lock must not
	// stretch it to wall-clock time.
	first, err := svc.CheckEntrance(context.Background(), courierID, 40.986106, 29.1161293, at)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if first == nil {
		t.Fatal("expected first entrance")
	}

	second, err := svc.CheckEntrance(context.Background(), courierID, 40.986106, 29.1161293, at.Add(30*time.Second))
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if second != nil {
		t.Fatalf("expected cooldown to suppress entrance, got %v", second.StoreName)
	}

	third, err := svc.CheckEntrance(context.Background(), courierID, 40.986106, 29.1161293, at.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("third check: %v", err)
	}
	if third == nil {
		t.Fatal("expected new entrance for a sample past the cooldown")
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM store_entrances WHERE courier_id = ?`, courierID).Scan(&count).Error; err != nil {
		t.Fatalf("count entrances: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 entrances, got %d", count)
	}
}

func TestEntranceExactlyOneCooldownApartLogsNewEvent(t *testing.T) {
	node := mustNode(t)
	svc, db := setupEntranceService(t, node)

	seedStore(t, db, node.Generate(), "Beylikdüzü 5M Migros", 41.0066851, 28.6552262)

	courierID := node.Generate()
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	cooldown := config.DefaultTrackingConfig().EntranceCooldown

	first, err := svc.CheckEntrance(context.Background(), courierID, 41.0066851, 28.6552262, at)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if first == nil {
		t.Fatal("expected first entrance")
	}

	second, err := svc.CheckEntrance(context.Background(), courierID, 41.0066851, 28.6552262, at.Add(cooldown))
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if second == nil {
		t.Fatal("expected entrance exactly one cooldown after the first")
	}
}

func TestDistinctCouriersLogIndependently(t *testing.T) {
	node := mustNode(t)
	svc, db := setupEntranceService(t, node)

	seedStore(t, db, node.Generate(), "Caddebostan MMM Migros", 40.9632463, 29.0630908)

	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	first, err := svc.CheckEntrance(context.Background(), node.Generate(), 40.9632463, 29.0630908, at)
	if err != nil {
		t.Fatalf("first courier: %v", err)
	}
	second, err := svc.CheckEntrance(context.Background(), node.Generate(), 40.9632463, 29.0630908, at)
	if err != nil {
		t.Fatalf("second courier: %v", err)
	}
	if first == nil || second == nil {
		t.Fatal("expected entrances for both couriers")
	}
}

func TestListByCourierNewestFirst(t *testing.T) {
	node := mustNode(t)
	svc, db := setupEntranceService(t, node)

	storeID := node.Generate()
	seedStore(t, db, storeID, "Ataşehir MMM Migros", 40.9923307, 29.1244229)

	courierID := node.Generate()
	seedCourier(t, db, courierID)

	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{0, 2 * time.Minute, 4 * time.Minute} {
		if _, err := svc.CheckEntrance(context.Background(), courierID, 40.9923307, 29.1244229, at.Add(offset)); err != nil {
			t.Fatalf("check entrance: %v", err)
		}
	}

	entrances, err := svc.ListByCourier(context.Background(), courierID.String())
	if err != nil {
		t.Fatalf("list entrances: %v", err)
	}
	if len(entrances) != 3 {
		t.Fatalf("expected 3 entrances, got %d", len(entrances))
	}
	for i := 1; i < len(entrances); i++ {
		if entrances[i].EntranceTime.After(entrances[i-1].EntranceTime) {
			t.Fatalf("entrances not ordered newest first: %v before %v",
				entrances[i-1].EntranceTime, entrances[i].EntranceTime)
		}
	}
	for _, e := range entrances {
		if e.StoreID != storeID {
			t.Fatalf("unexpected store id %v", e.StoreID)
		}
	}
}

func TestListByCourierRejectsUnknownAndInvalidIDs(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupEntranceService(t, node)

	if _, err := svc.ListByCourier(context.Background(), node.Generate().String()); !errors.Is(err, courierdomain.ErrNotFound) {
		t.Fatalf("expected courier not found, got %v", err)
	}
	if _, err := svc.ListByCourier(context.Background(), "not-a-number"); !errors.Is(err, courierdomain.ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
}
