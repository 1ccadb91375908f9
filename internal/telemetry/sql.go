package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
)

const insertPostgres = `
	INSERT INTO webhook_events (
		id, event_id, event_type, object_id, customer_id, subscription_id,
		invoice_id, payment_intent_id, price_id, handled, livemode, received_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const insertSQLite = `
	INSERT INTO webhook_events (
		id, event_id, event_type, object_id, customer_id, subscription_id,
		invoice_id, payment_intent_id, price_id, handled, livemode, received_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertArgs(event WebhookEvent) []any {
	receivedAt := event.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	return []any{
		uuid.New().String(),
		event.EventID,
		event.EventType,
		event.ObjectID,
		nullable(event.CustomerID),
		nullable(event.SubscriptionID),
		nullable(event.InvoiceID),
		nullable(event.PaymentIntentID),
		nullable(event.PriceID),
		event.Handled,
		event.Livemode,
		receivedAt.UTC(),
	}
}

// Postgres records events in the webhook_events table.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Tracker = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) TrackWebhookEvent(ctx context.Context, event WebhookEvent) error {
	if _, err := p.pool.Exec(ctx, insertPostgres, insertArgs(event)...); err != nil {
		return fmt.Errorf("insert webhook event: %w", err)
	}
	return nil
}

// SQLite records events in a local database; used in development.
type SQLite struct {
	db *sql.DB
}

var _ Tracker = (*SQLite)(nil)

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) TrackWebhookEvent(ctx context.Context, event WebhookEvent) error {
	if _, err := s.db.ExecContext(ctx, insertSQLite, insertArgs(event)...); err != nil {
		return fmt.Errorf("insert webhook event: %w", err)
	}
	return nil
}

// CountByType returns how many events of eventType have been recorded.
func (s *SQLite) CountByType(ctx context.Context, eventType string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM webhook_events WHERE event_type = ?", eventType).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count webhook events: %w", err)
	}
	return count, nil
}

// OpenSQLite opens the database at path with the sqlite3 driver.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
