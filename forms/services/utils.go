package services

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"dynamic_forms/forms/schema"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int) error {
	return &codedError{err: err, code: code}
}

func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	slog.Error("non coded error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

func checkFormExists(txn *gorm.DB, formId uuid.UUID) error {
	if _, err := schema.GetForm(formId, txn, false); err != nil {
		if errors.Is(err, schema.ErrFormNotFound) {
			return CodedError(err, http.StatusNotFound)
		}
		return CodedError(err, http.StatusInternalServerError)
	}
	return nil
}

func checkFieldTypeExists(txn *gorm.DB, fieldTypeId uuid.UUID) error {
	if _, err := schema.GetFieldType(fieldTypeId, txn); err != nil {
		if errors.Is(err, schema.ErrFieldTypeNotFound) {
			return CodedError(err, http.StatusNotFound)
		}
		return CodedError(err, http.StatusInternalServerError)
	}
	return nil
}

type FieldTypeInfo struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type FieldOptionInfo struct {
	Id    uuid.UUID `json:"id"`
	Value string    `json:"value"`
	Label string    `json:"label"`
	Order int       `json:"order"`
}

type FieldInfo struct {
	Id              uuid.UUID         `json:"id"`
	FormId          uuid.UUID         `json:"form_id"`
	Label           string            `json:"label"`
	FieldTypeId     uuid.UUID         `json:"field_type_id"`
	FieldType       *FieldTypeInfo    `json:"field_type,omitempty"`
	ValidationRules []string          `json:"validation_rules,omitempty"`
	Order           int               `json:"order"`
	IsRequired      bool              `json:"is_required"`
	Options         []FieldOptionInfo `json:"options"`
}

type FormInfo struct {
	Id          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Version     int         `json:"version"`
	IsActive    bool        `json:"is_active"`
	Fields      []FieldInfo `json:"fields,omitempty"`
}

type SubmissionValueInfo struct {
	Id      uuid.UUID  `json:"id"`
	FieldId uuid.UUID  `json:"field_id"`
	Value   string     `json:"value"`
	Field   *FieldInfo `json:"field,omitempty"`
}

type SubmissionInfo struct {
	Id             uuid.UUID             `json:"id"`
	FormId         uuid.UUID             `json:"form_id"`
	SubmissionDate time.Time             `json:"submission_date"`
	UserId         *string               `json:"user_id,omitempty"`
	Values         []SubmissionValueInfo `json:"values"`
}

func convertToFieldTypeInfo(fieldType schema.FieldType) FieldTypeInfo {
	return FieldTypeInfo{Id: fieldType.Id, Name: fieldType.Name, Description: fieldType.Description}
}

func convertToFieldInfo(field schema.FormField) FieldInfo {
	info := FieldInfo{
		Id:              field.Id,
		FormId:          field.FormId,
		Label:           field.Label,
		FieldTypeId:     field.FieldTypeId,
		ValidationRules: field.ValidationRules,
		Order:           field.Order,
		IsRequired:      field.IsRequired,
		Options:         make([]FieldOptionInfo, 0, len(field.Options)),
	}

	if field.FieldType != nil {
		fieldType := convertToFieldTypeInfo(*field.FieldType)
		info.FieldType = &fieldType
	}

	for _, option := range field.Options {
		info.Options = append(info.Options, FieldOptionInfo{
			Id: option.Id, Value: option.Value, Label: option.Label, Order: option.Order,
		})
	}

	return info
}

func convertToFormInfo(form schema.Form) FormInfo {
	info := FormInfo{
		Id:          form.Id,
		Name:        form.Name,
		Description: form.Description,
		Version:     form.Version,
		IsActive:    form.IsActive,
		Fields:      make([]FieldInfo, 0, len(form.Fields)),
	}

	for _, field := range form.Fields {
		info.Fields = append(info.Fields, convertToFieldInfo(field))
	}

	return info
}

func convertToSubmissionInfo(submission schema.FormSubmission) SubmissionInfo {
	info := SubmissionInfo{
		Id:             submission.Id,
		FormId:         submission.FormId,
		SubmissionDate: submission.SubmissionDate,
		UserId:         submission.UserId,
		Values:         make([]SubmissionValueInfo, 0, len(submission.Values)),
	}

	for _, value := range submission.Values {
		valueInfo := SubmissionValueInfo{Id: value.Id, FieldId: value.FormFieldId, Value: value.Value}
		if value.Field != nil {
			field := convertToFieldInfo(*value.Field)
			valueInfo.Field = &field
		}
		info.Values = append(info.Values, valueInfo)
	}

	return info
}
