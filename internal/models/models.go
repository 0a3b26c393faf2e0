package models

import (
	"time"

	"gorm.io/gorm"
)

// RuleType is the eligibility dimension in use.
type RuleType string

const (
	RuleItemCount  RuleType = "ITEM_COUNT"
	RuleOrderValue RuleType = "ORDER_VALUE"
)

// Valid reports whether r is a known rule type.
func (r RuleType) Valid() bool {
	return r == RuleItemCount || r == RuleOrderValue
}

// RaffleConfigID is the primary key of the singleton config row.
const RaffleConfigID = "raffle"

// RaffleConfig is the singleton eligibility rule.
type RaffleConfig struct {
	ID        string    `gorm:"primaryKey" json:"-"`
	Active    bool      `gorm:"not null" json:"active"`
	RuleType  RuleType  `gorm:"not null" json:"ruleType"`
	Threshold float64   `gorm:"not null" json:"threshold"` // strictly positive
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultRaffleConfig is persisted on first read when no config exists.
func DefaultRaffleConfig() RaffleConfig {
	return RaffleConfig{
		ID:        RaffleConfigID,
		Active:    true,
		RuleType:  RuleItemCount,
		Threshold: 5,
	}
}

// ParticipantEntry is one eligible order queued for drawing. Never mutated;
// removed only by a bulk clear.
type ParticipantEntry struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	OrderNumber string    `gorm:"not null;uniqueIndex" json:"orderNumber"`
	ClientName  string    `gorm:"not null" json:"clientName"`
	ClientPhone string    `gorm:"not null" json:"clientPhone"`
	TotalItems  int       `gorm:"not null" json:"totalItems"`
	TotalValue  float64   `gorm:"not null" json:"totalValue"`
	CreatedAt   time.Time `gorm:"not null;index" json:"createdAt"`
}

// WinnerRecord is the outcome of one completed draw. Immutable.
type WinnerRecord struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	ClientName  string    `gorm:"not null" json:"clientName"`
	ClientPhone string    `gorm:"not null" json:"clientPhone"`
	OrderNumber string    `gorm:"not null;index" json:"orderNumber"`
	TotalItems  int       `gorm:"not null" json:"totalItems"`
	TotalValue  float64   `gorm:"not null" json:"totalValue"`
	CreatedAt   time.Time `gorm:"not null;index" json:"createdAt"`
}

// OrderDocument is a raw storefront order as written by the checkout flow.
// Data holds the loosely-typed JSON body; it is only ever read here.
type OrderDocument struct {
	ID        string    `gorm:"primaryKey"`
	Data      string    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"index"`
}

// Contact is a name/phone pair.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// OrderItem is one order line.
type OrderItem struct {
	Quantity int `json:"quantity"`
}

// Order is the typed, normalised view of a storefront order.
type Order struct {
	Number          string      `json:"number"`
	Items           []OrderItem `json:"items"`
	Total           float64     `json:"total"`
	DeliveryContact *Contact    `json:"deliveryContact,omitempty"`
	// DirectContact carries contact fields set on the order itself.
	DirectContact *Contact `json:"directContact,omitempty"`
}

// ItemCount sums line quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Migrate will create/update your tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&RaffleConfig{},
		&ParticipantEntry{},
		&WinnerRecord{},
		&OrderDocument{},
	)
}
