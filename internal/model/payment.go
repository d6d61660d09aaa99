package model

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Payment tracks settlement of a consultation fee. A partial unique index on
// (consultation_id) where status = 'paid' guarantees at most one successful
// payment per consultation; see model.Migrate.
type Payment struct {
	ID             uint `gorm:"primaryKey"`
	ConsultationID uint `gorm:"not null;index"`
	PatientID      uint `gorm:"not null;index"`

	Amount    float64       `gorm:"not null"`
	Reference string        `gorm:"type:varchar(32);not null;uniqueIndex"`
	Method    PaymentMethod `gorm:"type:varchar(16);not null;default:'cash'"`
	Status    PaymentStatus `gorm:"type:varchar(16);not null;default:'pending';index"`

	// ProviderData holds the raw gateway response from the last
	// initialize or verify call.
	ProviderData datatypes.JSON

	PaidAt *time.Time

	Consultation *Consultation `gorm:"foreignKey:ConsultationID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Patient      *Patient      `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
