package repository

import (
	"time"

	"github.com/ManuelReschke/ServerHub/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByDiscordID(discordID string) (*models.User, error)
	Update(user *models.User) error
	TouchLastLogin(id uint, at time.Time) error
	IsAdmin(id uint) (bool, error)
	Count() (int64, error)
}

// ServerRepository defines the interface for server listings and votes
type ServerRepository interface {
	Create(server *models.Server) error
	GetByID(id uint) (*models.Server, error)
	ListByOwner(ownerID uint) ([]models.Server, error)
	Top(limit int) ([]models.Server, error)
	ActiveBySlotType(slotType string, now time.Time, limit int) ([]models.Server, error)
	DeleteOwned(id, ownerID uint) (bool, error)
	LastVoteAt(serverID uint, userID uint, ip string) (*time.Time, error)
	AddVote(vote *models.ServerVote) error
	Count() (int64, error)
	CountVotesSince(since time.Time) (int64, error)
}

// BannerRepository defines the interface for banner advertisements
type BannerRepository interface {
	Create(banner *models.Banner) error
	ListByOwner(ownerID uint) ([]models.Banner, error)
	Active(now time.Time, limit int) ([]models.Banner, error)
	DeleteOwned(id, ownerID uint) (bool, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User   UserRepository
	Server ServerRepository
	Banner BannerRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:   NewUserRepository(db),
		Server: NewServerRepository(db),
		Banner: NewBannerRepository(db),
	}
}
