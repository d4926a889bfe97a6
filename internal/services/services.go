// Package services holds the business rules behind the HTTP handlers.
package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"lab-backend/internal/models"
)

// MaterialStore is implemented by repositories.MaterialRepository.
type MaterialStore interface {
	Create(ctx context.Context, m *models.Material) error
	Get(ctx context.Context, id int) (*models.Material, error)
	GetByCode(ctx context.Context, code string) (*models.Material, error)
	List(ctx context.Context) ([]models.Material, error)
	Update(ctx context.Context, m *models.Material) error
	Delete(ctx context.Context, id int) error
	Decrement(ctx context.Context, id int, qty decimal.Decimal, userID int, note string) (decimal.Decimal, error)
	Movements(ctx context.Context, materialID int) ([]models.StockMovement, error)
}

// EquipmentStore is implemented by repositories.EquipmentRepository.
type EquipmentStore interface {
	Create(ctx context.Context, e *models.Equipment) error
	Get(ctx context.Context, id int) (*models.Equipment, error)
	List(ctx context.Context) ([]models.Equipment, error)
	Update(ctx context.Context, e *models.Equipment) error
	Delete(ctx context.Context, id int) error
	Exists(ctx context.Context, id int) (bool, error)
}

// MaintenanceStore is implemented by repositories.MaintenanceRepository.
// The bool results report whether the conditional write matched a row.
type MaintenanceStore interface {
	Create(ctx context.Context, m *models.Maintenance) error
	Get(ctx context.Context, id int) (*models.Maintenance, error)
	List(ctx context.Context) ([]models.Maintenance, error)
	Update(ctx context.Context, m *models.Maintenance) (bool, error)
	Complete(ctx context.Context, id int, cost decimal.NullDecimal, notes string, performed time.Time) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// UserStore is implemented by repositories.UserRepository.
type UserStore interface {
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetTOTPSecret(ctx context.Context, userID int, secret string) error
	EnableTOTP(ctx context.Context, userID int) error
	UpsertPassword(ctx context.Context, u *models.User) error
}

// DocumentStore is implemented by storage.S3Store.
type DocumentStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
}

// Cache is implemented by *cache.Client, including its nil value.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	InvalidatePattern(ctx context.Context, pattern string)
}

// StockNotifier is told when stock levels may have changed.
type StockNotifier interface {
	Trigger()
}

type noCache struct{}

func (noCache) GetJSON(context.Context, string, any) bool           { return false }
func (noCache) SetJSON(context.Context, string, any, time.Duration) {}
func (noCache) InvalidatePattern(context.Context, string)           {}
