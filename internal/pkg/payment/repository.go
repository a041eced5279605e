package payment

import (
	"context"

	"emperror.dev/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/ServerHub/app/models"
)

// Repository provides DB operations used by the payment services.
type Repository interface {
	GetConfig(ctx context.Context, providerKey string) (*models.PaymentConfig, error)
	ListConfigs(ctx context.Context) ([]models.PaymentConfig, error)
	UpsertConfigValue(ctx context.Context, providerKey, configValue string) error
	SetEnabled(ctx context.Context, providerKey string, enabled bool) error
	GetActivePackage(ctx context.Context, packageID string, slotID int) (*models.Package, error)
	ListActivePackages(ctx context.Context) ([]models.Package, error)
	CreatePurchase(ctx context.Context, purchase *models.Purchase) error
	SetPurchaseProviderRef(ctx context.Context, purchaseID, providerRef string) error
	SetPurchaseStatus(ctx context.Context, purchaseID, status string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetConfig(ctx context.Context, providerKey string) (*models.PaymentConfig, error) {
	var cfg models.PaymentConfig
	err := r.db.WithContext(ctx).Where("config_key = ?", providerKey).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *gormRepository) ListConfigs(ctx context.Context) ([]models.PaymentConfig, error) {
	var cfgs []models.PaymentConfig
	err := r.db.WithContext(ctx).Order("config_key ASC").Find(&cfgs).Error
	return cfgs, err
}

// UpsertConfigValue writes the credential blob of a provider. A new row is
// created enabled; an existing row keeps its is_enabled flag.
func (r *gormRepository) UpsertConfigValue(ctx context.Context, providerKey, configValue string) error {
	cfg := &models.PaymentConfig{
		ConfigKey:   providerKey,
		ConfigValue: configValue,
		IsEnabled:   true,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "config_key"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"config_value",
			"updated_at",
		}),
	}).Create(cfg).Error
	return errors.WrapIfWithDetails(err, "upsert payment config", "config_key", providerKey)
}

func (r *gormRepository) SetEnabled(ctx context.Context, providerKey string, enabled bool) error {
	tx := r.db.WithContext(ctx).Model(&models.PaymentConfig{}).
		Where("config_key = ?", providerKey).
		Update("is_enabled", enabled)
	if tx.Error != nil {
		return errors.WrapWithDetails(tx.Error, "toggle payment config", "config_key", providerKey)
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	// No row yet: the provider was never validated. Store an empty blob so
	// the flag survives until the first validation.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "config_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "updated_at"}),
	}).Create(&models.PaymentConfig{
		ConfigKey:   providerKey,
		ConfigValue: "{}",
		IsEnabled:   enabled,
	}).Error
}

func (r *gormRepository) GetActivePackage(ctx context.Context, packageID string, slotID int) (*models.Package, error) {
	var pkg models.Package
	err := r.db.WithContext(ctx).
		Where("id = ? AND slot_id = ? AND is_active = ?", packageID, slotID, true).
		First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithDetails(ErrPackageNotFound, "package_id", packageID, "slot_id", slotID)
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *gormRepository) ListActivePackages(ctx context.Context) ([]models.Package, error) {
	var pkgs []models.Package
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("slot_id ASC, sort_order ASC, price_cents ASC").
		Find(&pkgs).Error
	return pkgs, err
}

func (r *gormRepository) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *gormRepository) SetPurchaseProviderRef(ctx context.Context, purchaseID, providerRef string) error {
	return r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("purchase_id = ?", purchaseID).
		Update("provider_ref", providerRef).Error
}

func (r *gormRepository) SetPurchaseStatus(ctx context.Context, purchaseID, status string) error {
	return r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("purchase_id = ?", purchaseID).
		Update("status", status).Error
}
