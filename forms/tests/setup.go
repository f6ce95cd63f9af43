package tests

import (
	"testing"

	"dynamic_forms/forms/schema"
	"dynamic_forms/forms/services"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	platform services.FormPlatform
	api      chi.Router
	db       *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	// Foreign keys must be enabled explicitly in sqlite for delete cascades
	// to fire.
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	err = db.AutoMigrate(schema.Tables()...)
	if err != nil {
		t.Fatal(err)
	}

	err = schema.SeedFieldTypes(db, schema.DefaultFieldTypes)
	if err != nil {
		t.Fatal(err)
	}

	platform := services.NewFormPlatform(db)

	return &testEnv{platform: platform, api: platform.Routes(), db: db}
}

func (env *testEnv) newClient() client {
	return client{api: env.api}
}

func (env *testEnv) fieldTypeId(t *testing.T, name string) string {
	var fieldType schema.FieldType
	result := env.db.Where("name = ?", name).First(&fieldType)
	if result.Error != nil {
		t.Fatalf("error looking up field type '%v': %v", name, result.Error)
	}
	return fieldType.Id.String()
}
