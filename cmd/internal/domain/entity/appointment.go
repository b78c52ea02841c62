package entity

// Appointment is a single appointment request submitted through the website.
// Rows are only ever inserted; nothing in the service updates or deletes them.
type Appointment struct {
	ID            int    `gorm:"primaryKey;autoIncrement"`
	OwnerName     string `gorm:"not null"`
	Phone         string `gorm:"not null"`
	Email         *string
	PetName       string `gorm:"not null"`
	Species       string `gorm:"not null"`
	Service       string `gorm:"not null"`
	PreferredDate *string
	PreferredTime *string
	Notes         *string
	CreatedAt     int64 `gorm:"not null;autoCreateTime:false;index"` // epoch millis, UTC
}

func (Appointment) TableName() string {
	return "appointments"
}
