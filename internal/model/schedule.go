package model

import "time"

// Slot durations a doctor may choose, in minutes.
var AllowedSlotDurations = []int{15, 20, 30, 45, 60}

const (
	DefaultSlotDuration = 30
	DefaultMaxPerSlot   = 1
)

// DoctorSchedule holds a doctor's weekly working pattern. Work hours are
// stored as "15:04" strings and dates elsewhere as "2006-01-02" strings so
// comparisons behave identically across Postgres and SQLite.
type DoctorSchedule struct {
	ID       uint `gorm:"primaryKey"`
	DoctorID uint `gorm:"not null;uniqueIndex"`

	WorkStart string `gorm:"type:varchar(5);not null"` // 15:04
	WorkEnd   string `gorm:"type:varchar(5);not null"`

	Monday    bool `gorm:"not null;default:false"`
	Tuesday   bool `gorm:"not null;default:false"`
	Wednesday bool `gorm:"not null;default:false"`
	Thursday  bool `gorm:"not null;default:false"`
	Friday    bool `gorm:"not null;default:false"`
	Saturday  bool `gorm:"not null;default:false"`
	Sunday    bool `gorm:"not null;default:false"`

	SlotDuration int `gorm:"not null;default:30"` // minutes
	MaxPerSlot   int `gorm:"not null;default:1"`

	Doctor *Doctor `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DayEnabled reports whether the schedule covers the given weekday.
func (s *DoctorSchedule) DayEnabled(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return s.Monday
	case time.Tuesday:
		return s.Tuesday
	case time.Wednesday:
		return s.Wednesday
	case time.Thursday:
		return s.Thursday
	case time.Friday:
		return s.Friday
	case time.Saturday:
		return s.Saturday
	case time.Sunday:
		return s.Sunday
	}
	return false
}

// SetDay flips a single weekday flag.
func (s *DoctorSchedule) SetDay(day time.Weekday, enabled bool) {
	switch day {
	case time.Monday:
		s.Monday = enabled
	case time.Tuesday:
		s.Tuesday = enabled
	case time.Wednesday:
		s.Wednesday = enabled
	case time.Thursday:
		s.Thursday = enabled
	case time.Friday:
		s.Friday = enabled
	case time.Saturday:
		s.Saturday = enabled
	case time.Sunday:
		s.Sunday = enabled
	}
}
