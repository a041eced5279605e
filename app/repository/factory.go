package repository

import (
	"sync"

	"gorm.io/gorm"

	"github.com/ManuelReschke/ServerHub/internal/pkg/payment"
)

// Factory hands out one shared instance per repository
type Factory struct {
	db      *gorm.DB
	repos   *Repositories
	payment payment.Repository
	once    sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
		f.payment = payment.NewRepository(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetServerRepository returns the server repository instance
func (f *Factory) GetServerRepository() ServerRepository {
	return f.GetRepositories().Server
}

// GetBannerRepository returns the banner repository instance
func (f *Factory) GetBannerRepository() BannerRepository {
	return f.GetRepositories().Banner
}

// GetPaymentRepository returns the payment config and purchase repository
func (f *Factory) GetPaymentRepository() payment.Repository {
	f.GetRepositories()
	return f.payment
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
