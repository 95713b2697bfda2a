package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/crm-core/internal/domain"
	"gorm.io/gorm"
)

// ClientRepository handles database operations for clients
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Exists reports whether a client with the given ID exists
func (r *ClientRepository) Exists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&domain.Client{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
