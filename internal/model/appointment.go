package model

import "time"

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentAccepted  AppointmentStatus = "accepted"
	AppointmentDeclined  AppointmentStatus = "declined"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// Appointment is a booking for a specific doctor, date, and time slot.
// Date is "2006-01-02" and TimeSlot is "15:04".
type Appointment struct {
	ID        uint `gorm:"primaryKey"`
	PatientID uint `gorm:"not null;index"`
	DoctorID  uint `gorm:"not null;index:idx_appointments_doctor_date"`

	Date     string `gorm:"type:varchar(10);not null;index:idx_appointments_doctor_date"`
	TimeSlot string `gorm:"type:varchar(5);not null"`

	Status AppointmentStatus `gorm:"type:varchar(16);not null;default:'pending';index"`
	Reason string            `gorm:"type:text"`

	Patient *Patient `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
