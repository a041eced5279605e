package repository

import (
	"errors"
	"time"

	"github.com/ManuelReschke/ServerHub/app/models"
	"gorm.io/gorm"
)

type serverRepository struct {
	db *gorm.DB
}

// NewServerRepository creates a new server repository instance
func NewServerRepository(db *gorm.DB) ServerRepository {
	return &serverRepository{db: db}
}

func (r *serverRepository) Create(server *models.Server) error {
	return r.db.Create(server).Error
}

func (r *serverRepository) GetByID(id uint) (*models.Server, error) {
	var server models.Server
	if err := r.db.First(&server, id).Error; err != nil {
		return nil, err
	}
	return &server, nil
}

// ListByOwner returns the servers of one user, newest first
func (r *serverRepository) ListByOwner(ownerID uint) ([]models.Server, error) {
	var servers []models.Server
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&servers).Error
	return servers, err
}

// Top returns the ranking ordered by votes. Ties go to the older listing.
func (r *serverRepository) Top(limit int) ([]models.Server, error) {
	var servers []models.Server
	err := r.db.Order("votes DESC, id ASC").Limit(limit).Find(&servers).Error
	return servers, err
}

// ActiveBySlotType returns paid listings of a slot type that have not expired
func (r *serverRepository) ActiveBySlotType(slotType string, now time.Time, limit int) ([]models.Server, error) {
	var servers []models.Server
	err := r.db.Where("slot_type = ? AND active_until IS NOT NULL AND active_until > ?", slotType, now).
		Order("active_until DESC").
		Limit(limit).
		Find(&servers).Error
	return servers, err
}

// DeleteOwned soft deletes a server if it belongs to ownerID
func (r *serverRepository) DeleteOwned(id, ownerID uint) (bool, error) {
	tx := r.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Server{})
	return tx.RowsAffected > 0, tx.Error
}

// LastVoteAt returns the time of the newest vote for serverID cast by the
// user or from the address. Anonymous votes only match by address.
func (r *serverRepository) LastVoteAt(serverID uint, userID uint, ip string) (*time.Time, error) {
	var vote models.ServerVote
	q := r.db.Where("server_id = ?", serverID)
	if userID != 0 {
		q = q.Where("user_id = ? OR ip_address = ?", userID, ip)
	} else {
		q = q.Where("ip_address = ?", ip)
	}
	err := q.Order("created_at DESC").First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote.CreatedAt, nil
}

// AddVote stores the vote and increments the server counter in one transaction
func (r *serverRepository) AddVote(vote *models.ServerVote) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Server{}).
			Where("id = ?", vote.ServerID).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Count returns the number of listed servers
func (r *serverRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Server{}).Count(&count).Error
	return count, err
}

// CountVotesSince returns the number of votes cast at or after since
func (r *serverRepository) CountVotesSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.ServerVote{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
