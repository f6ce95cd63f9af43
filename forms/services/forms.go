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

type FormService struct {
	db          *gorm.DB
	submissions *SubmissionService
}

func (s *FormService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Route("/{form_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Put("/", s.Update)
		r.Delete("/", s.Delete)
		r.Post("/duplicate", s.Duplicate)

		r.Post("/submit", s.submissions.Submit)
		r.Post("/submissions/query", s.submissions.Query)
		r.Get("/submissions/statistics", s.submissions.Statistics)
	})

	return r
}

type optionSpec struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Order *int   `json:"order"`
}

type fieldSpec struct {
	Label           string       `json:"label"`
	FieldTypeId     uuid.UUID    `json:"field_type_id"`
	ValidationRules []string     `json:"validation_rules"`
	Order           *int         `json:"order"`
	IsRequired      bool         `json:"is_required"`
	Options         []optionSpec `json:"options"`
}

// createField persists one field and its options. Orders default to the
// position of the spec in its input list.
func createField(txn *gorm.DB, formId uuid.UUID, spec fieldSpec, defaultOrder int) (schema.FormField, error) {
	if spec.Label == "" {
		return schema.FormField{}, CodedError(errors.New("field label must be specified"), http.StatusBadRequest)
	}

	if err := checkFieldTypeExists(txn, spec.FieldTypeId); err != nil {
		return schema.FormField{}, err
	}

	order := defaultOrder
	if spec.Order != nil {
		order = *spec.Order
	}

	field := schema.FormField{
		Id:              uuid.New(),
		FormId:          formId,
		Label:           spec.Label,
		FieldTypeId:     spec.FieldTypeId,
		ValidationRules: spec.ValidationRules,
		Order:           order,
		IsRequired:      spec.IsRequired,
	}

	result := txn.Create(&field)
	if result.Error != nil {
		slog.Error("sql error creating form field", "form_id", formId, "error", result.Error)
		return schema.FormField{}, CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}

	for i, option := range spec.Options {
		if option.Value == "" || option.Label == "" {
			return schema.FormField{}, CodedError(errors.New("option value and label must be specified"), http.StatusBadRequest)
		}

		optionOrder := i
		if option.Order != nil {
			optionOrder = *option.Order
		}

		result := txn.Create(&schema.FieldOption{
			Id:          uuid.New(),
			FormFieldId: field.Id,
			Value:       option.Value,
			Label:       option.Label,
			Order:       optionOrder,
		})
		if result.Error != nil {
			slog.Error("sql error creating field option", "field_id", field.Id, "error", result.Error)
			return schema.FormField{}, CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
	}

	return field, nil
}

func createFields(txn *gorm.DB, formId uuid.UUID, specs []fieldSpec) error {
	for i, spec := range specs {
		if _, err := createField(txn, formId, spec, i); err != nil {
			return err
		}
	}
	return nil
}

// replaceFields drops every existing field for the form (options and any
// dependent submission values go with them) and recreates from the new specs.
func replaceFields(txn *gorm.DB, formId uuid.UUID, specs []fieldSpec) error {
	result := txn.Where("form_id = ?", formId).Delete(&schema.FormField{})
	if result.Error != nil {
		slog.Error("sql error deleting form fields for replace", "form_id", formId, "error", result.Error)
		return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}

	return createFields(txn, formId, specs)
}

func (s *FormService) List(w http.ResponseWriter, r *http.Request) {
	query := s.db
	if r.URL.Query().Get("active_only") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var forms []schema.Form
	result := query.Find(&forms)
	if result.Error != nil {
		slog.Error("sql error listing forms", "error", result.Error)
		utils.WriteErrorResponse(w, fmt.Sprintf("error listing forms: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]FormInfo, 0, len(forms))
	for _, form := range forms {
		infos = append(infos, convertToFormInfo(form))
	}

	utils.WriteDataResponse(w, infos)
}

type createFormRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     *int        `json:"version"`
	IsActive    *bool       `json:"is_active"`
	Fields      []fieldSpec `json:"fields"`
}

func (s *FormService) Create(w http.ResponseWriter, r *http.Request) {
	var params createFormRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Name == "" {
		utils.WriteErrorResponse(w, "Form name must be specified", http.StatusBadRequest)
		return
	}

	newForm := schema.Form{
		Id:          uuid.New(),
		Name:        params.Name,
		Description: params.Description,
		Version:     1,
		IsActive:    true,
	}
	if params.Version != nil {
		newForm.Version = *params.Version
	}
	if params.IsActive != nil {
		newForm.IsActive = *params.IsActive
	}

	err := s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Create(&newForm)
		if result.Error != nil {
			slog.Error("sql error creating new form", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return createFields(txn, newForm.Id, params.Fields)
	})

	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error creating form: %v", err), GetResponseCode(err))
		return
	}

	form, err := schema.GetForm(newForm.Id, s.db, true)
	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving created form: %v", err), http.StatusInternalServerError)
		return
	}

	slog.Info("created form", "form_id", form.Id, "fields", len(form.Fields))

	utils.WriteCreatedResponse(w, "Form created successfully", convertToFormInfo(form))
}

func (s *FormService) Get(w http.ResponseWriter, r *http.Request) {
	formId, err := utils.URLParamUUID(r, "form_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	form, err := schema.GetForm(formId, s.db, true)
	if err != nil {
		if errors.Is(err, schema.ErrFormNotFound) {
			utils.WriteErrorResponse(w, "Form not found", http.StatusNotFound)
			return
		}
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving form: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteDataResponse(w, convertToFormInfo(form))
}

type updateFormRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Version     *int         `json:"version"`
	IsActive    *bool        `json:"is_active"`
	Fields      *[]fieldSpec `json:"fields"`
}

// Update patches only the attributes present in the request. If a fields list
// is supplied the entire existing field subtree is replaced with it.
func (s *FormService) Update(w http.ResponseWriter, r *http.Request) {
	formId, err := utils.URLParamUUID(r, "form_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params updateFormRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkFormExists(txn, formId); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if params.Name != nil {
			updates["name"] = *params.Name
		}
		if params.Description != nil {
			updates["description"] = *params.Description
		}
		if params.Version != nil {
			updates["version"] = *params.Version
		}
		if params.IsActive != nil {
			updates["is_active"] = *params.IsActive
		}

		if len(updates) > 0 {
			result := txn.Model(&schema.Form{Id: formId}).Updates(updates)
			if result.Error != nil {
				slog.Error("sql error updating form", "form_id", formId, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}
		}

		if params.Fields != nil {
			return replaceFields(txn, formId, *params.Fields)
		}

		return nil
	})

	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error updating form: %v", err), GetResponseCode(err))
		return
	}

	form, err := schema.GetForm(formId, s.db, true)
	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving updated form: %v", err), http.StatusInternalServerError)
		return
	}

	slog.Info("updated form", "form_id", formId)

	utils.WriteMessageDataResponse(w, "Form updated successfully", convertToFormInfo(form))
}

func (s *FormService) Delete(w http.ResponseWriter, r *http.Request) {
	formId, err := utils.URLParamUUID(r, "form_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkFormExists(txn, formId); err != nil {
			return err
		}

		result := txn.Delete(&schema.Form{Id: formId})
		if result.Error != nil {
			slog.Error("sql error deleting form", "form_id", formId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error deleting form: %v", err), GetResponseCode(err))
		return
	}

	slog.Info("deleted form", "form_id", formId)

	utils.WriteMessageResponse(w, "Form deleted successfully")
}

type duplicateFormRequest struct {
	Version *int `json:"version"`
}

// Duplicate clones a form and its full field/option subtree with fresh ids.
// The copy gets the requested version (or original+1) and starts inactive.
// Submissions are never copied.
func (s *FormService) Duplicate(w http.ResponseWriter, r *http.Request) {
	formId, err := utils.URLParamUUID(r, "form_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params duplicateFormRequest
	if r.ContentLength > 0 {
		if !utils.ParseRequestBody(w, r, &params) {
			return
		}
	}

	var newFormId uuid.UUID

	err = s.db.Transaction(func(txn *gorm.DB) error {
		original, err := schema.GetForm(formId, txn, true)
		if err != nil {
			if errors.Is(err, schema.ErrFormNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		version := original.Version + 1
		if params.Version != nil {
			version = *params.Version
		}

		newForm := schema.Form{
			Id:          uuid.New(),
			Name:        original.Name + " (Copy)",
			Description: original.Description,
			Version:     version,
			IsActive:    false,
		}

		result := txn.Create(&newForm)
		if result.Error != nil {
			slog.Error("sql error creating duplicate form", "form_id", formId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		for _, field := range original.Fields {
			newField := schema.FormField{
				Id:              uuid.New(),
				FormId:          newForm.Id,
				Label:           field.Label,
				FieldTypeId:     field.FieldTypeId,
				ValidationRules: field.ValidationRules,
				Order:           field.Order,
				IsRequired:      field.IsRequired,
			}

			result := txn.Create(&newField)
			if result.Error != nil {
				slog.Error("sql error duplicating form field", "field_id", field.Id, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}

			for _, option := range field.Options {
				result := txn.Create(&schema.FieldOption{
					Id:          uuid.New(),
					FormFieldId: newField.Id,
					Value:       option.Value,
					Label:       option.Label,
					Order:       option.Order,
				})
				if result.Error != nil {
					slog.Error("sql error duplicating field option", "option_id", option.Id, "error", result.Error)
					return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
				}
			}
		}

		newFormId = newForm.Id
		return nil
	})

	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error duplicating form: %v", err), GetResponseCode(err))
		return
	}

	form, err := schema.GetForm(newFormId, s.db, true)
	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving duplicated form: %v", err), http.StatusInternalServerError)
		return
	}

	slog.Info("duplicated form", "form_id", formId, "new_form_id", newFormId)

	utils.WriteCreatedResponse(w, "Form duplicated successfully", convertToFormInfo(form))
}
