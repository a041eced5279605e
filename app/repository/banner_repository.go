package repository

import (
	"time"

	"github.com/ManuelReschke/ServerHub/app/models"
	"gorm.io/gorm"
)

type bannerRepository struct {
	db *gorm.DB
}

// NewBannerRepository creates a new banner repository instance
func NewBannerRepository(db *gorm.DB) BannerRepository {
	return &bannerRepository{db: db}
}

func (r *bannerRepository) Create(banner *models.Banner) error {
	return r.db.Create(banner).Error
}

func (r *bannerRepository) ListByOwner(ownerID uint) ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&banners).Error
	return banners, err
}

// Active returns banners whose paid period has not ended yet
func (r *bannerRepository) Active(now time.Time, limit int) ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Where("active_until IS NOT NULL AND active_until > ?", now).
		Order("active_until DESC").
		Limit(limit).
		Find(&banners).Error
	return banners, err
}

func (r *bannerRepository) DeleteOwned(id, ownerID uint) (bool, error) {
	tx := r.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Banner{})
	return tx.RowsAffected > 0, tx.Error
}
