package models

import "time"

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusPaid      = "paid"
	PurchaseStatusCancelled = "cancelled"
)

// Purchase records a slot checkout. Paid purchases are activated by the
// provider webhook, which is handled outside of this service.
type Purchase struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PurchaseID  string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"purchase_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	SlotID      int       `gorm:"not null;index" json:"slot_id"`
	PackageID   string    `gorm:"type:varchar(64);not null" json:"package_id"`
	Provider    string    `gorm:"type:varchar(20);not null;index" json:"provider"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Currency    string    `gorm:"type:varchar(8);not null" json:"currency"`
	ProviderRef string    `gorm:"type:varchar(191);default:''" json:"provider_ref"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
