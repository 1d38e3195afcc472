package users

import (
	"fmt"
	"strings"
	"time"
)

// Fields holds the mutable attributes of a user record.
type Fields struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
	// Phone is optional; zero means no phone is on file.
	Phone int `json:"phone,omitempty"`
}

// HasPhone reports whether a phone number is on file.
func (f Fields) HasPhone() bool {
	return f.Phone > 0
}

func (f Fields) validate() error {
	if f.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrInvalidFields)
	}
	if f.Phone < 0 {
		return fmt.Errorf("%w: phone must not be negative", ErrInvalidFields)
	}
	return nil
}

// UserRecord is a user entry as held by a Store. ID is empty until the store assigns one.
type UserRecord struct {
	ID string `json:"id,omitempty"`
	Fields
}

// HasIdentity reports whether the store has assigned an identifier.
func (r UserRecord) HasIdentity() bool {
	return strings.TrimSpace(r.ID) != ""
}

// RecordRow is the persisted form of a UserRecord. Seq preserves insertion order.
type RecordRow struct {
	Seq       int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	RecordID  string    `gorm:"column:record_id;size:190;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;size:320;not null"`
	Age       int       `gorm:"column:age;not null"`
	Email     string    `gorm:"column:email;size:320;not null"`
	Phone     int       `gorm:"column:phone;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName exposes the table backing user records.
func (RecordRow) TableName() string {
	return "user_records"
}

// Record converts the row into its domain form.
func (row RecordRow) Record() UserRecord {
	return UserRecord{
		ID: row.RecordID,
		Fields: Fields{
			Name:  row.Name,
			Age:   row.Age,
			Email: row.Email,
			Phone: row.Phone,
		},
	}
}

// NewRecordRow builds a row for a freshly identified record.
func NewRecordRow(id string, fields Fields) RecordRow {
	return RecordRow{
		RecordID: id,
		Name:     fields.Name,
		Age:      fields.Age,
		Email:    fields.Email,
		Phone:    fields.Phone,
	}
}

// DemoSeed returns the records the demo roster starts with.
func DemoSeed() []Fields {
	return []Fields{
		{Name: "Jordi Pujol", Age: 34, Email: "jordi.pujol@exemple.cat"},
		{Name: "Anna Martí", Age: 27, Email: "anna.marti@gmail.com"},
	}
}
