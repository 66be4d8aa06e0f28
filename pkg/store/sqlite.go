package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/testsabirweb/slack_render/pkg/models"
	"github.com/testsabirweb/slack_render/pkg/store/migrations"

	_ "modernc.org/sqlite"
)

// nodeField is a row of the node_fields table
type nodeField struct {
	NodeID     string    `db:"node_id"`
	ExternalID string    `db:"external_id"`
	Field      string    `db:"field"`
	Value      string    `db:"value"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// SQLiteAttacher stores attached fields as JSON in a SQLite database
type SQLiteAttacher struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSQLiteAttacher opens the database at path and applies migrations
func NewSQLiteAttacher(path string, logger *zap.Logger) (*SQLiteAttacher, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyMigrations(db.DB); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("failed to close database after migration failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("sqlite store ready", zap.String("path", path))
	return &SQLiteAttacher{
		db:     db,
		logger: logger.Named("sqlite"),
	}, nil
}

func applyMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// AttachField implements FieldAttacher
func (s *SQLiteAttacher) AttachField(ctx context.Context, channel models.Channel, name string, value []models.NormalizedMessage) error {
	if value == nil {
		value = []models.NormalizedMessage{}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	row := nodeField{
		NodeID:     channel.ID,
		ExternalID: channel.ChannelID,
		Field:      name,
		Value:      string(payload),
		UpdatedAt:  time.Now().UTC(),
	}

	query := `
        INSERT INTO node_fields (node_id, external_id, field, value, updated_at)
        VALUES (:node_id, :external_id, :field, :value, :updated_at)
        ON CONFLICT (node_id, field) DO UPDATE SET
            external_id = excluded.external_id,
            value = excluded.value,
            updated_at = excluded.updated_at;
    `
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to store %s for node %s: %w", name, channel.ID, err)
	}

	s.logger.Debug("field attached",
		zap.String("node_id", channel.ID),
		zap.String("field", name),
		zap.Int("items", len(value)))
	return nil
}

// Field reads back the value attached under name to the node with nodeID.
// The second result is false when nothing is attached.
func (s *SQLiteAttacher) Field(ctx context.Context, nodeID, name string) ([]models.NormalizedMessage, bool, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		`SELECT value FROM node_fields WHERE node_id = ? AND field = ?`,
		nodeID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s for node %s: %w", name, nodeID, err)
	}

	var value []models.NormalizedMessage
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return nil, false, fmt.Errorf("failed to decode %s for node %s: %w", name, nodeID, err)
	}
	return value, true, nil
}

// HealthCheck implements FieldAttacher
func (s *SQLiteAttacher) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements FieldAttacher
func (s *SQLiteAttacher) Close(ctx context.Context) error {
	return s.db.Close()
}
