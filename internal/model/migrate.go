package model

import "gorm.io/gorm"

// Migrate creates or updates all tables, then applies the constraints
// AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Admin{},
		&Department{},
		&Specialty{},
		&Patient{},
		&Doctor{},
		&DoctorSchedule{},
		&Appointment{},
		&Consultation{},
		&Payment{},
	); err != nil {
		return err
	}

	// At most one successful payment per consultation. Partial indexes are
	// supported by both Postgres and SQLite.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_consultation_paid
		 ON payments (consultation_id) WHERE status = 'paid'`,
	).Error
}
