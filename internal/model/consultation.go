package model

import "time"

// Consultation records the clinical outcome of a completed appointment.
// At most one consultation exists per appointment.
type Consultation struct {
	ID            uint `gorm:"primaryKey"`
	AppointmentID uint `gorm:"not null;uniqueIndex"`
	PatientID     uint `gorm:"not null;index"`
	DoctorID      uint `gorm:"not null;index"`

	Diagnosis string `gorm:"type:text;not null"`
	Notes     string `gorm:"type:text"`

	// Fee is nil until the doctor bills the consultation.
	Fee *float64

	Appointment *Appointment `gorm:"foreignKey:AppointmentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Patient     *Patient     `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Doctor      *Doctor      `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
