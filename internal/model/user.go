package model

import "time"

// Role names used in tokens, sessions, and authorization policies.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

type Admin struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID           uint   `gorm:"primaryKey"`
	FirstName    string `gorm:"type:varchar(64);not null"`
	LastName     string `gorm:"type:varchar(64);not null"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone        string `gorm:"type:varchar(32);not null"`
	Gender       string `gorm:"type:varchar(16)"`
	DateOfBirth  string `gorm:"type:varchar(10)"` // 2006-01-02
	Address      string `gorm:"type:text"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Picture      string `gorm:"type:varchar(255)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ProfileComplete reports whether the patient has filled in the fields
// booking requires.
func (p *Patient) ProfileComplete() bool {
	return p.Phone != "" && p.Address != ""
}

type Doctor struct {
	ID           uint   `gorm:"primaryKey"`
	FirstName    string `gorm:"type:varchar(64);not null"`
	LastName     string `gorm:"type:varchar(64);not null"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone        string `gorm:"type:varchar(32);not null"`
	Gender       string `gorm:"type:varchar(16)"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Picture      string `gorm:"type:varchar(255)"`
	Bio          string `gorm:"type:text"`

	DepartmentID *uint `gorm:"index"`
	SpecialtyID  *uint `gorm:"index"`

	Department *Department `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Specialty  *Specialty  `gorm:"foreignKey:SpecialtyID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}
