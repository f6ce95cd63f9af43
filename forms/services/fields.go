package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"dynamic_forms/forms/schema"
	"dynamic_forms/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FieldService struct {
	db *gorm.DB
}

func (s *FieldService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Route("/{field_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Put("/", s.Update)
		r.Delete("/", s.Delete)
	})

	return r
}

func (s *FieldService) List(w http.ResponseWriter, r *http.Request) {
	formId, err := utils.QueryParamUUID(r, "form_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := checkFormExists(s.db, formId); err != nil {
		utils.WriteErrorResponse(w, err.Error(), GetResponseCode(err))
		return
	}

	var fields []schema.FormField
	result := s.db.
		Preload("FieldType").
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order(`"order"`) }).
		Where("form_id = ?", formId).
		Order(`"order"`).
		Find(&fields)
	if result.Error != nil {
		slog.Error("sql error listing form fields", "form_id", formId, "error", result.Error)
		utils.WriteErrorResponse(w, fmt.Sprintf("error listing fields: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]FieldInfo, 0, len(fields))
	for _, field := range fields {
		infos = append(infos, convertToFieldInfo(field))
	}

	utils.WriteDataResponse(w, infos)
}

type createFieldRequest struct {
	FormId uuid.UUID `json:"form_id"`
	fieldSpec
}

func (s *FieldService) Create(w http.ResponseWriter, r *http.Request) {
	var params createFieldRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.FormId == uuid.Nil {
		utils.WriteErrorResponse(w, "form_id must be specified", http.StatusBadRequest)
		return
	}

	var fieldId uuid.UUID

	err := s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkFormExists(txn, params.FormId); err != nil {
			return err
		}

		field, err := createField(txn, params.FormId, params.fieldSpec, 0)
		if err != nil {
			return err
		}

		fieldId = field.Id
		return nil
	})

	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error creating field: %v", err), GetResponseCode(err))
		return
	}

	field, err := schema.GetField(fieldId, s.db)
	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving created field: %v", err), http.StatusInternalServerError)
		return
	}

	slog.Info("created field", "field_id", fieldId, "form_id", params.FormId)

	utils.WriteCreatedResponse(w, "Field created successfully", convertToFieldInfo(field))
}

func (s *FieldService) Get(w http.ResponseWriter, r *http.Request) {
	fieldId, err := utils.URLParamUUID(r, "field_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	field, err := schema.GetField(fieldId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrFieldNotFound) {
			utils.WriteErrorResponse(w, "Field not found", http.StatusNotFound)
			return
		}
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving field: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteDataResponse(w, convertToFieldInfo(field))
}

type updateFieldRequest struct {
	Label           *string       `json:"label"`
	FieldTypeId     *uuid.UUID    `json:"field_type_id"`
	ValidationRules *[]string     `json:"validation_rules"`
	Order           *int          `json:"order"`
	IsRequired      *bool         `json:"is_required"`
	Options         *[]optionSpec `json:"options"`
}

// Update patches the attributes present in the request. A supplied options
// list replaces all existing options for the field.
func (s *FieldService) Update(w http.ResponseWriter, r *http.Request) {
	fieldId, err := utils.URLParamUUID(r, "field_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params updateFieldRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetField(fieldId, txn); err != nil {
			if errors.Is(err, schema.ErrFieldNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		updates := map[string]interface{}{}
		if params.Label != nil {
			updates["label"] = *params.Label
		}
		if params.FieldTypeId != nil {
			if err := checkFieldTypeExists(txn, *params.FieldTypeId); err != nil {
				return err
			}
			updates["field_type_id"] = *params.FieldTypeId
		}
		if params.ValidationRules != nil {
			field := schema.FormField{Id: fieldId, ValidationRules: *params.ValidationRules}
			result := txn.Model(&field).Select("validation_rules").Updates(&field)
			if result.Error != nil {
				slog.Error("sql error updating field validation rules", "field_id", fieldId, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}
		}
		if params.Order != nil {
			updates["order"] = *params.Order
		}
		if params.IsRequired != nil {
			updates["is_required"] = *params.IsRequired
		}

		if len(updates) > 0 {
			result := txn.Model(&schema.FormField{Id: fieldId}).Updates(updates)
			if result.Error != nil {
				slog.Error("sql error updating field", "field_id", fieldId, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}
		}

		if params.Options != nil {
			result := txn.Where("form_field_id = ?", fieldId).Delete(&schema.FieldOption{})
			if result.Error != nil {
				slog.Error("sql error deleting field options for replace", "field_id", fieldId, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}

			for i, option := range *params.Options {
				if option.Value == "" || option.Label == "" {
					return CodedError(errors.New("option value and label must be specified"), http.StatusBadRequest)
				}

				optionOrder := i
				if option.Order != nil {
					optionOrder = *option.Order
				}

				result := txn.Create(&schema.FieldOption{
					Id:          uuid.New(),
					FormFieldId: fieldId,
					Value:       option.Value,
					Label:       option.Label,
					Order:       optionOrder,
				})
				if result.Error != nil {
					slog.Error("sql error recreating field option", "field_id", fieldId, "error", result.Error)
					return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
				}
			}
		}

		return nil
	})

	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error updating field: %v", err), GetResponseCode(err))
		return
	}

	field, err := schema.GetField(fieldId, s.db)
	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving updated field: %v", err), http.StatusInternalServerError)
		return
	}

	slog.Info("updated field", "field_id", fieldId)

	utils.WriteMessageDataResponse(w, "Field updated successfully", convertToFieldInfo(field))
}

func (s *FieldService) Delete(w http.ResponseWriter, r *http.Request) {
	fieldId, err := utils.URLParamUUID(r, "field_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetField(fieldId, txn); err != nil {
			if errors.Is(err, schema.ErrFieldNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Delete(&schema.FormField{Id: fieldId})
		if result.Error != nil {
			slog.Error("sql error deleting field", "field_id", fieldId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error deleting field: %v", err), GetResponseCode(err))
		return
	}

	slog.Info("deleted field", "field_id", fieldId)

	utils.WriteMessageResponse(w, "Field deleted successfully")
}
