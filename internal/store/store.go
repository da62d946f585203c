package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/example/tintura/internal/models"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrSchemaMismatch means the database is missing a column this build
	// writes, usually because migrations have not been applied.
	ErrSchemaMismatch = errors.New("database schema is out of date: the products table is missing the image_urls gallery column, run the migrator before saving styles")
)

// Catalog is the persistent product store.
type Catalog interface {
	List(ctx context.Context) ([]models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id uuid.UUID, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// classify maps driver errors onto the store's sentinel errors while
// keeping the original in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UndefinedColumn, pgerrcode.UndefinedTable:
			return errors.Join(ErrSchemaMismatch, err)
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "image_urls") && (strings.Contains(msg, "column") || strings.Contains(msg, "schema")) {
		return errors.Join(ErrSchemaMismatch, err)
	}
	return err
}

// syncLegacyImage points the single-image column at the gallery cover.
func syncLegacyImage(p *models.Product) {
	if len(p.ImageURLs) > 0 {
		p.ImageURL = p.ImageURLs[0]
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
}
