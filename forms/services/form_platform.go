package services

import (
	"log"
	"net/http"
	"os"

	"dynamic_forms/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// FormPlatform bundles the form, field, field type, and submission services
// behind a single router.
type FormPlatform struct {
	fieldTypes  FieldTypeService
	forms       FormService
	fields      FieldService
	submissions SubmissionService
}

func NewFormPlatform(db *gorm.DB) FormPlatform {
	submissions := SubmissionService{db: db}

	return FormPlatform{
		fieldTypes:  FieldTypeService{db: db},
		forms:       FormService{db: db, submissions: &submissions},
		fields:      FieldService{db: db},
		submissions: submissions,
	}
}

func (p *FormPlatform) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Mount("/field-types", p.fieldTypes.Routes())
	r.Mount("/forms", p.forms.Routes())
	r.Mount("/fields", p.fields.Routes())
	r.Mount("/submissions", p.submissions.Routes())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteMessageResponse(w, "ok")
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
