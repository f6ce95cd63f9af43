package schema

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrFormNotFound       = errors.New("form not found")
	ErrFieldNotFound      = errors.New("field not found")
	ErrFieldTypeNotFound  = errors.New("field type not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrDbAccessFailed     = errors.New("db access failed")
)

func orderedFields(db *gorm.DB) *gorm.DB {
	return db.Order(`"order"`)
}

func GetForm(formId uuid.UUID, db *gorm.DB, loadFields bool) (Form, error) {
	var form Form

	var result *gorm.DB = db
	if loadFields {
		result = result.
			Preload("Fields", orderedFields).
			Preload("Fields.FieldType").
			Preload("Fields.Options", orderedFields)
	}
	result = result.First(&form, "id = ?", formId)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return form, ErrFormNotFound
		}
		slog.Error("sql error in get form", "form_id", formId, "error", result.Error)
		return form, ErrDbAccessFailed
	}

	return form, nil
}

func GetField(fieldId uuid.UUID, db *gorm.DB) (FormField, error) {
	var field FormField

	result := db.
		Preload("FieldType").
		Preload("Options", orderedFields).
		First(&field, "id = ?", fieldId)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return field, ErrFieldNotFound
		}
		slog.Error("sql error in get field", "field_id", fieldId, "error", result.Error)
		return field, ErrDbAccessFailed
	}

	return field, nil
}

func GetFieldType(fieldTypeId uuid.UUID, db *gorm.DB) (FieldType, error) {
	var fieldType FieldType

	result := db.First(&fieldType, "id = ?", fieldTypeId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fieldType, ErrFieldTypeNotFound
		}
		slog.Error("sql error in get field type", "field_type_id", fieldTypeId, "error", result.Error)
		return fieldType, ErrDbAccessFailed
	}

	return fieldType, nil
}

func GetSubmission(submissionId uuid.UUID, db *gorm.DB) (FormSubmission, error) {
	var submission FormSubmission

	result := db.
		Preload("Values").
		Preload("Values.Field").
		Preload("Values.Field.FieldType").
		First(&submission, "id = ?", submissionId)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return submission, ErrSubmissionNotFound
		}
		slog.Error("sql error in get submission", "submission_id", submissionId, "error", result.Error)
		return submission, ErrDbAccessFailed
	}

	return submission, nil
}
