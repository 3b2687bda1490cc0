package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupOutbox(t *testing.T) (*Outbox, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	ddl := []string{
		`CREATE TABLE ledger_events (
			id INTEGER PRIMARY KEY,
			event_type TEXT NOT NULL,
			payload TEXT,
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_ledger_events_dedupe_key ON ledger_events (dedupe_key)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("ddl: %v", err)
		}
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewOutbox(db, node), db
}

func TestPublishStoresEvent(t *testing.T) {
	outbox, db := setupOutbox(t)
	ctx := context.Background()

	err := outbox.Publish(ctx, Event{
		Type:    EventInvoicesGenerated,
		Payload: map[string]any{"month": 6, "year": 2025},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM ledger_events WHERE event_type = ?`, EventInvoicesGenerated).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 event, got %d", count)
	}
}

func TestPublishDedupesByKey(t *testing.T) {
	outbox, db := setupOutbox(t)
	ctx := context.Background()

	event := Event{
		Type:      EventSettlementCalculated,
		Payload:   map[string]any{"property_id": "1"},
		DedupeKey: "settlement-1-2025-06",
	}
	if err := outbox.Publish(ctx, event); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := outbox.Publish(ctx, event); err != nil {
		t.Fatalf("second publish: %v", err)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM ledger_events`).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected dedupe to keep one event, got %d", count)
	}
}

func TestPublishRejectsMissingType(t *testing.T) {
	outbox, _ := setupOutbox(t)

	if err := outbox.Publish(context.Background(), Event{}); err == nil {
		t.Fatal("expected an error for a missing event type")
	}
}

func TestPublishTxRequiresTransaction(t *testing.T) {
	outbox, _ := setupOutbox(t)

	if err := outbox.PublishTx(context.Background(), nil, Event{Type: EventInvoicePaid}); err == nil {
		t.Fatal("expected an error for a nil transaction")
	}
}
