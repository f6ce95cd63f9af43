package services

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"dynamic_forms/forms/schema"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comparison operators accepted in query filters. Anything else falls back to
// substring matching.
var filterOperators = map[string]string{
	"=":    "=",
	"LIKE": "LIKE",
	">":    ">",
	"<":    "<",
	">=":   ">=",
	"<=":   "<=",
}

func queryByFieldValue(db *gorm.DB, formId, fieldId uuid.UUID, value string) ([]schema.FormSubmission, error) {
	var submissions []schema.FormSubmission

	result := db.
		Preload("Values").
		Preload("Values.Field").
		Where("form_id = ?", formId).
		Where(
			"EXISTS (SELECT 1 FROM submission_field_values v WHERE v.form_submission_id = form_submissions.id AND v.form_field_id = ? AND v.value LIKE ?)",
			fieldId, "%"+value+"%",
		).
		Order("submission_date DESC").
		Find(&submissions)
	if result.Error != nil {
		slog.Error("sql error querying submissions by field value", "form_id", formId, "field_id", fieldId, "error", result.Error)
		return nil, CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}

	return submissions, nil
}

// queryByFilters requires every filter to hold for the submission, each
// against its own value row. Two filters on different fields therefore match
// submissions satisfying both, even though no single value row satisfies
// either pair.
func queryByFilters(db *gorm.DB, formId uuid.UUID, filters []queryFilter) ([]schema.FormSubmission, error) {
	if len(filters) == 0 {
		return nil, CodedError(fmt.Errorf("filters array must not be empty"), http.StatusBadRequest)
	}

	query := db.
		Preload("Values").
		Preload("Values.Field").
		Where("form_id = ?", formId)

	for _, filter := range filters {
		if filter.FieldId == uuid.Nil {
			return nil, CodedError(fmt.Errorf("filter field_id must be specified"), http.StatusBadRequest)
		}

		operator := strings.ToUpper(strings.TrimSpace(filter.Operator))
		if operator == "" {
			operator = "LIKE"
		}
		op, ok := filterOperators[operator]
		if !ok {
			return nil, CodedError(fmt.Errorf("unsupported filter operator '%v'", filter.Operator), http.StatusBadRequest)
		}

		value := stringifyFilterValue(filter.Value)
		if op == "LIKE" {
			value = "%" + value + "%"
		}

		query = query.Where(
			fmt.Sprintf("EXISTS (SELECT 1 FROM submission_field_values v WHERE v.form_submission_id = form_submissions.id AND v.form_field_id = ? AND v.value %v ?)", op),
			filter.FieldId, value,
		)
	}

	var submissions []schema.FormSubmission
	result := query.Order("submission_date DESC").Find(&submissions)
	if result.Error != nil {
		slog.Error("sql error querying submissions by filters", "form_id", formId, "error", result.Error)
		return nil, CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}

	return submissions, nil
}

func stringifyFilterValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
