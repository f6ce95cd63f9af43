package schema

import (
	"time"

	"github.com/google/uuid"
)

// FieldType is a static catalog entry describing the input kind a field
// renders as (text, email, dropdown, ...). Seeded at startup, never owned
// by forms.
type FieldType struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name        string `gorm:"unique;size:50;not null"`
	Description string `gorm:"size:255"`
}

type Form struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name        string `gorm:"size:255;not null"`
	Description string

	Version  int  `gorm:"not null;default:1"`
	IsActive bool `gorm:"not null;default:true"`

	Fields      []FormField      `gorm:"constraint:OnDelete:CASCADE"`
	Submissions []FormSubmission `gorm:"constraint:OnDelete:CASCADE"`
}

type FormField struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey"`
	FormId uuid.UUID `gorm:"type:uuid;not null;index"`

	Label string `gorm:"size:255;not null"`

	FieldTypeId uuid.UUID  `gorm:"type:uuid;not null"`
	FieldType   *FieldType `gorm:"constraint:OnDelete:RESTRICT"`

	// Free form rule tokens ("email", "min:3", ...) interpreted by the
	// validation engine, stored as a json array.
	ValidationRules []string `gorm:"serializer:json"`

	Order      int  `gorm:"not null;default:0"`
	IsRequired bool `gorm:"not null;default:false"`

	Options []FieldOption `gorm:"foreignKey:FormFieldId;constraint:OnDelete:CASCADE"`
}

type FieldOption struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FormFieldId uuid.UUID `gorm:"type:uuid;not null;index"`

	Value string `gorm:"size:255;not null"`
	Label string `gorm:"size:255;not null"`
	Order int    `gorm:"not null;default:0"`
}

type FormSubmission struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey"`
	FormId uuid.UUID `gorm:"type:uuid;not null;index"`

	SubmissionDate time.Time `gorm:"not null"`

	// Opaque external identity, not validated against any identity service.
	UserId *string `gorm:"size:100"`

	Values []SubmissionFieldValue `gorm:"foreignKey:FormSubmissionId;constraint:OnDelete:CASCADE"`
}

type SubmissionFieldValue struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	FormSubmissionId uuid.UUID `gorm:"type:uuid;not null;index"`
	FormFieldId      uuid.UUID `gorm:"type:uuid;not null;index"`

	// Composite answers are serialized to json text before storage.
	Value string

	Field *FormField `gorm:"foreignKey:FormFieldId;constraint:OnDelete:CASCADE"`
}

// Tables returns every model in dependency order, for AutoMigrate.
func Tables() []interface{} {
	return []interface{}{
		&FieldType{}, &Form{}, &FormField{}, &FieldOption{},
		&FormSubmission{}, &SubmissionFieldValue{},
	}
}
