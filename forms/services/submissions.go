package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dynamic_forms/forms/schema"
	"dynamic_forms/forms/validation"
	"dynamic_forms/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	submitMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "form_submit", Help: "Form submissions"})
	queryMetric  = promauto.NewSummary(prometheus.SummaryOpts{Name: "submission_query", Help: "Submission value queries"})

	validationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "form_submit_validation_failures",
		Help: "Number of submissions rejected by field validation.",
	})
)

type SubmissionService struct {
	db *gorm.DB
}

func (s *SubmissionService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)

	r.Route("/{submission_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Delete("/", s.Delete)
	})

	return r
}

type submitFormRequest struct {
	Data   map[string]interface{} `json:"data"`
	UserId *string                `json:"user_id"`
}

// Submit validates the payload against the form's declared rules and, only on
// a clean pass, persists one submission row plus one value row per payload
// entry as a single transaction. A validation failure writes nothing.
func (s *SubmissionService) Submit(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(submitMetric)
	defer timer.ObserveDuration()

	formId, err := utils.URLParamUUID(r, "form_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params submitFormRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	var submissionId uuid.UUID
	var fieldErrors validation.Errors

	err = s.db.Transaction(func(txn *gorm.DB) error {
		form, err := schema.GetForm(formId, txn, true)
		if err != nil {
			if errors.Is(err, schema.ErrFormNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		errs, err := validation.Validate(form.Fields, params.Data)
		if err != nil {
			// Misconfigured rule tokens are the operator's fault, not the
			// submitter's.
			return CodedError(err, http.StatusBadRequest)
		}
		if errs.Any() {
			fieldErrors = errs
			return CodedError(errors.New("validation failed"), http.StatusUnprocessableEntity)
		}

		submission := schema.FormSubmission{
			Id:             uuid.New(),
			FormId:         formId,
			SubmissionDate: time.Now().UTC(),
			UserId:         params.UserId,
		}

		result := txn.Create(&submission)
		if result.Error != nil {
			slog.Error("sql error creating submission", "form_id", formId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		for fieldId, value := range params.Data {
			id, err := uuid.Parse(fieldId)
			if err != nil {
				return CodedError(fmt.Errorf("invalid field id '%v' in payload", fieldId), http.StatusBadRequest)
			}

			result := txn.Create(&schema.SubmissionFieldValue{
				Id:               uuid.New(),
				FormSubmissionId: submission.Id,
				FormFieldId:      id,
				Value:            validation.Stringify(value),
			})
			if result.Error != nil {
				slog.Error("sql error creating submission value", "field_id", fieldId, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}
		}

		submissionId = submission.Id
		return nil
	})

	if err != nil {
		if fieldErrors.Any() {
			validationFailures.Inc()
			slog.Info("submission rejected by validation", "form_id", formId, "fields", len(fieldErrors))
			utils.WriteValidationErrorResponse(w, fieldErrors)
			return
		}
		utils.WriteErrorResponse(w, fmt.Sprintf("error submitting form: %v", err), GetResponseCode(err))
		return
	}

	submission, err := schema.GetSubmission(submissionId, s.db)
	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving created submission: %v", err), http.StatusInternalServerError)
		return
	}

	slog.Info("created submission", "form_id", formId, "submission_id", submissionId, "values", len(submission.Values))

	utils.WriteCreatedResponse(w, "Form submitted successfully", convertToSubmissionInfo(submission))
}

type submissionPage struct {
	Submissions []SubmissionInfo `json:"submissions"`
	Total       int64            `json:"total"`
	Page        int              `json:"page"`
	PerPage     int              `json:"per_page"`
	TotalPages  int              `json:"total_pages"`
}

func (s *SubmissionService) List(w http.ResponseWriter, r *http.Request) {
	formId, err := utils.QueryParamUUID(r, "form_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := utils.QueryParamInt(r, "page", 1)
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	perPage, err := utils.QueryParamInt(r, "per_page", 15)
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}

	if err := checkFormExists(s.db, formId); err != nil {
		utils.WriteErrorResponse(w, err.Error(), GetResponseCode(err))
		return
	}

	var total int64
	result := s.db.Model(&schema.FormSubmission{}).Where("form_id = ?", formId).Count(&total)
	if result.Error != nil {
		slog.Error("sql error counting submissions", "form_id", formId, "error", result.Error)
		utils.WriteErrorResponse(w, fmt.Sprintf("error listing submissions: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	var submissions []schema.FormSubmission
	result = s.db.
		Preload("Values").
		Preload("Values.Field").
		Where("form_id = ?", formId).
		Order("submission_date DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&submissions)
	if result.Error != nil {
		slog.Error("sql error listing submissions", "form_id", formId, "error", result.Error)
		utils.WriteErrorResponse(w, fmt.Sprintf("error listing submissions: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]SubmissionInfo, 0, len(submissions))
	for _, submission := range submissions {
		infos = append(infos, convertToSubmissionInfo(submission))
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	utils.WriteDataResponse(w, submissionPage{
		Submissions: infos,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		TotalPages:  totalPages,
	})
}

func (s *SubmissionService) Get(w http.ResponseWriter, r *http.Request) {
	submissionId, err := utils.URLParamUUID(r, "submission_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	submission, err := schema.GetSubmission(submissionId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrSubmissionNotFound) {
			utils.WriteErrorResponse(w, "Submission not found", http.StatusNotFound)
			return
		}
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving submission: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteDataResponse(w, convertToSubmissionInfo(submission))
}

func (s *SubmissionService) Delete(w http.ResponseWriter, r *http.Request) {
	submissionId, err := utils.URLParamUUID(r, "submission_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetSubmission(submissionId, txn); err != nil {
			if errors.Is(err, schema.ErrSubmissionNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Delete(&schema.FormSubmission{Id: submissionId})
		if result.Error != nil {
			slog.Error("sql error deleting submission", "submission_id", submissionId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})

	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error deleting submission: %v", err), GetResponseCode(err))
		return
	}

	slog.Info("deleted submission", "submission_id", submissionId)

	utils.WriteMessageResponse(w, "Submission deleted successfully")
}

type queryFilter struct {
	FieldId  uuid.UUID   `json:"field_id"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

type querySubmissionsRequest struct {
	FieldId *uuid.UUID    `json:"field_id"`
	Value   *string       `json:"value"`
	Filters []queryFilter `json:"filters"`
}

// Query matches submissions by stored field values: either a single
// (field, substring) criterion, or a conjunction of (field, operator, value)
// filters where each filter independently requires some value row of the
// submission to satisfy it.
func (s *SubmissionService) Query(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(queryMetric)
	defer timer.ObserveDuration()

	formId, err := utils.URLParamUUID(r, "form_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params querySubmissionsRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := checkFormExists(s.db, formId); err != nil {
		utils.WriteErrorResponse(w, err.Error(), GetResponseCode(err))
		return
	}

	var submissions []schema.FormSubmission

	if params.FieldId != nil && params.Value != nil {
		submissions, err = queryByFieldValue(s.db, formId, *params.FieldId, *params.Value)
	} else if params.Filters != nil {
		submissions, err = queryByFilters(s.db, formId, params.Filters)
	} else {
		utils.WriteErrorResponse(w, "Either field_id with value or filters array is required", http.StatusBadRequest)
		return
	}

	if err != nil {
		utils.WriteErrorResponse(w, fmt.Sprintf("error querying submissions: %v", err), GetResponseCode(err))
		return
	}

	infos := make([]SubmissionInfo, 0, len(submissions))
	for _, submission := range submissions {
		infos = append(infos, convertToSubmissionInfo(submission))
	}

	utils.WriteDataResponse(w, infos)
}

type submissionStatistics struct {
	Total  int64      `json:"total"`
	Latest *time.Time `json:"latest"`
	Oldest *time.Time `json:"oldest"`
}

func (s *SubmissionService) Statistics(w http.ResponseWriter, r *http.Request) {
	formId, err := utils.URLParamUUID(r, "form_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := checkFormExists(s.db, formId); err != nil {
		utils.WriteErrorResponse(w, err.Error(), GetResponseCode(err))
		return
	}

	var submissions []schema.FormSubmission
	result := s.db.
		Where("form_id = ?", formId).
		Order("submission_date DESC").
		Find(&submissions)
	if result.Error != nil {
		slog.Error("sql error loading submission statistics", "form_id", formId, "error", result.Error)
		utils.WriteErrorResponse(w, fmt.Sprintf("error loading statistics: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	stats := submissionStatistics{Total: int64(len(submissions))}
	if len(submissions) > 0 {
		stats.Latest = &submissions[0].SubmissionDate
		stats.Oldest = &submissions[len(submissions)-1].SubmissionDate
	}

	utils.WriteDataResponse(w, stats)
}
