package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"dynamic_forms/forms/schema"
	"dynamic_forms/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type FieldTypeService struct {
	db *gorm.DB
}

func (s *FieldTypeService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)
	r.Get("/{field_type_id}", s.Get)

	return r
}

func (s *FieldTypeService) List(w http.ResponseWriter, r *http.Request) {
	var fieldTypes []schema.FieldType
	result := s.db.Order("name").Find(&fieldTypes)
	if result.Error != nil {
		slog.Error("sql error listing field types", "error", result.Error)
		utils.WriteErrorResponse(w, fmt.Sprintf("error listing field types: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]FieldTypeInfo, 0, len(fieldTypes))
	for _, fieldType := range fieldTypes {
		infos = append(infos, convertToFieldTypeInfo(fieldType))
	}

	utils.WriteDataResponse(w, infos)
}

func (s *FieldTypeService) Get(w http.ResponseWriter, r *http.Request) {
	fieldTypeId, err := utils.URLParamUUID(r, "field_type_id")
	if err != nil {
		utils.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	fieldType, err := schema.GetFieldType(fieldTypeId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrFieldTypeNotFound) {
			utils.WriteErrorResponse(w, "Field type not found", http.StatusNotFound)
			return
		}
		utils.WriteErrorResponse(w, fmt.Sprintf("error retrieving field type: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteDataResponse(w, convertToFieldTypeInfo(fieldType))
}
