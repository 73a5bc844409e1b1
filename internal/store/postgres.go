package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/shutterbin/image-service/internal/ident"
	"github.com/shutterbin/image-service/internal/models"
)

// PostgresStore is the durable Store implementation. Lookup and delete keep
// the same absent/false semantics as the in-memory variant: database errors
// are logged and reported as a miss rather than surfaced to handlers.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres connects, configures the pool and ensures the schema exists.
func NewPostgres(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &PostgresStore{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("Connected to PostgreSQL successfully")
	return s, nil
}

func (s *PostgresStore) createTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS images (
        id VARCHAR(16) PRIMARY KEY,
        provider VARCHAR(16) NOT NULL,
        provider_key VARCHAR(500) NOT NULL,
        raw_url VARCHAR(500) NOT NULL,
        width INTEGER NOT NULL DEFAULT 0,
        height INTEGER NOT NULL DEFAULT 0,
        mime VARCHAR(100) NOT NULL,
        size BIGINT NOT NULL,
        delete_token VARCHAR(16) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );

    CREATE INDEX IF NOT EXISTS idx_images_created_at ON images(created_at DESC);
    `
	_, err := s.db.Exec(query)
	return err
}

func (s *PostgresStore) Create(in CreateInput) (models.Image, error) {
	var lastErr error
	for i := 0; i <= idRetries; i++ {
		img := models.Image{
			ID:          ident.New(),
			Provider:    in.Provider,
			ProviderKey: in.ProviderKey,
			RawURL:      in.RawURL,
			Width:       in.Width,
			Height:      in.Height,
			Mime:        in.Mime,
			Size:        in.Size,
			DeleteToken: ident.New(),
			CreatedAt:   time.Now(),
		}

		query := `
        INSERT INTO images (id, provider, provider_key, raw_url, width, height, mime, size, delete_token, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO NOTHING
        `
		res, err := s.db.Exec(query,
			img.ID,
			img.Provider,
			img.ProviderKey,
			img.RawURL,
			img.Width,
			img.Height,
			img.Mime,
			img.Size,
			img.DeleteToken,
			img.CreatedAt,
		)
		if err != nil {
			return models.Image{}, fmt.Errorf("failed to save image metadata: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			return img, nil
		}
		// Id collision: DO NOTHING swallowed the insert, draw again.
		lastErr = fmt.Errorf("id collision on %s", img.ID)
	}
	return models.Image{}, fmt.Errorf("failed to generate unique id after %d attempts: %w", idRetries, lastErr)
}

func (s *PostgresStore) GetByID(id string) (models.Image, bool) {
	query := `
    SELECT id, provider, provider_key, raw_url, width, height, mime, size, delete_token, created_at
    FROM images WHERE id = $1
    `

	var img models.Image
	err := s.db.QueryRow(query, id).Scan(
		&img.ID,
		&img.Provider,
		&img.ProviderKey,
		&img.RawURL,
		&img.Width,
		&img.Height,
		&img.Mime,
		&img.Size,
		&img.DeleteToken,
		&img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Image{}, false
		}
		log.Printf("Error getting image metadata: %v", err)
		return models.Image{}, false
	}
	return img, true
}

func (s *PostgresStore) Delete(id, deleteToken string) bool {
	// Token match happens in Go so the comparison is a constant-time
	// full-value check, same as the in-memory store.
	img, exists := s.GetByID(id)
	if !exists || !tokensEqual(img.DeleteToken, deleteToken) {
		return false
	}

	result, err := s.db.Exec(`DELETE FROM images WHERE id = $1 AND delete_token = $2`, id, img.DeleteToken)
	if err != nil {
		log.Printf("Error deleting image metadata: %v", err)
		return false
	}
	rows, _ := result.RowsAffected()
	return rows > 0
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
