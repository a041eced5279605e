package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Server is a game-server listing.
type Server struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Name        string         `gorm:"type:varchar(120);not null" json:"name" validate:"required,min=3,max=120"`
	Game        string         `gorm:"type:varchar(80);not null;index" json:"game" validate:"required,max=80"`
	Address     string         `gorm:"type:varchar(255);not null" json:"address" validate:"required,max=255"`
	Website     string         `gorm:"type:varchar(255);default:''" json:"website" validate:"omitempty,url,max=255"`
	Description string         `gorm:"type:text" json:"description" validate:"max=5000"`
	SlotType    string         `gorm:"type:varchar(32);default:'free';index" json:"slot_type"`
	SlotID      int            `gorm:"default:0" json:"slot_id"`
	PackageID   string         `gorm:"type:varchar(64);default:''" json:"package_id"`
	Votes       int64          `gorm:"not null;default:0;index" json:"votes"`
	Views       int64          `gorm:"not null;default:0" json:"views"`
	ActiveUntil *time.Time     `gorm:"type:timestamp;default:null" json:"active_until,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Server) Validate() error {
	return validator.New().Struct(s)
}

// ServerVote is one vote cast for a server.
type ServerVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ServerID  uint      `gorm:"not null;index" json:"server_id"`
	UserID    uint      `gorm:"default:0;index" json:"user_id"`
	IPAddress string    `gorm:"type:varchar(45);not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// Banner is an image advertisement shown in the top banner slot.
type Banner struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Title       string         `gorm:"type:varchar(120);not null" json:"title" validate:"required,min=3,max=120"`
	ImageURL    string         `gorm:"type:varchar(255);not null" json:"image_url" validate:"required,url,max=255"`
	TargetURL   string         `gorm:"type:varchar(255);not null" json:"target_url" validate:"required,url,max=255"`
	SlotID      int            `gorm:"default:0" json:"slot_id"`
	PackageID   string         `gorm:"type:varchar(64);default:''" json:"package_id"`
	ActiveUntil *time.Time     `gorm:"type:timestamp;default:null" json:"active_until,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Banner) Validate() error {
	return validator.New().Struct(b)
}
