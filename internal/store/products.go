package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tintura/internal/models"
)

// ProductStore is the gorm backed Catalog.
type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	const op = "ProductStore.List"

	var products []models.Product
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return products, nil
}

// Insert creates p; the id and timestamps are assigned here.
func (s *ProductStore) Insert(ctx context.Context, p *models.Product) error {
	const op = "ProductStore.Insert"

	p.ID = uuid.Nil
	syncLegacyImage(p)
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	return nil
}

// Update replaces every column of the product except id and created_at.
func (s *ProductStore) Update(ctx context.Context, id uuid.UUID, p *models.Product) error {
	const op = "ProductStore.Update"

	p.ID = id
	syncLegacyImage(p)
	res := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "ProductStore.Delete"

	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
