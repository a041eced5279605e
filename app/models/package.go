package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Package is a priced, timed offering that can be bought for a slot.
type Package struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id" validate:"required,max=64"`
	SlotID       int       `gorm:"not null;index" json:"slot_id" validate:"required,gt=0"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	PriceCents   int64     `gorm:"not null;default:0" json:"price_cents" validate:"gte=0"`
	DurationDays int       `gorm:"not null;default:30" json:"duration_days" validate:"gt=0"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	SortOrder    int       `gorm:"default:0" json:"sort_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Package) Validate() error {
	return validator.New().Struct(p)
}

// PriceLabel renders the price as a decimal amount, e.g. "4.99".
func (p *Package) PriceLabel() string {
	return fmt.Sprintf("%d.%02d", p.PriceCents/100, p.PriceCents%100)
}
