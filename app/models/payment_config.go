package models

import "time"

// Payment provider keys. They double as the config_key of the provider's
// PaymentConfig row.
const (
	PaymentProviderStripe = "stripe"
	PaymentProviderPayPal = "paypal"
)

// PaymentConfig holds the persisted state of one payment provider. ConfigValue
// is a JSON blob written by the credential validators.
type PaymentConfig struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ConfigKey   string    `gorm:"column:config_key;type:varchar(64);not null;uniqueIndex" json:"config_key"`
	ConfigValue string    `gorm:"column:config_value;type:text" json:"config_value"`
	IsEnabled   bool      `gorm:"column:is_enabled;default:false" json:"is_enabled"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
