package model

import "time"

type Department struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(128);not null;uniqueIndex"`
	Description string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Specialty struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(128);not null;uniqueIndex"`
	Description string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
