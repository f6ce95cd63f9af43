package tests

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dynamic_forms/forms/services"
)

func assertApiError(t *testing.T, err error, status int) *apiError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected request to fail with status %d, got no error", status)
	}

	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error, got: %v", err)
	}
	if apiErr.Status != status {
		t.Fatalf("expected status %d, got %d: %v", status, apiErr.Status, apiErr.Message)
	}

	return apiErr
}

func textFieldSpec(env *testEnv, t *testing.T, label string, rules ...string) map[string]interface{} {
	return map[string]interface{}{
		"label":            label,
		"field_type_id":    env.fieldTypeId(t, "text"),
		"validation_rules": rules,
	}
}

func TestCreateAndGetForm(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	form, err := c.createForm(map[string]interface{}{
		"name":        "Contact Form",
		"description": "Customer contact form",
		"fields": []map[string]interface{}{
			textFieldSpec(env, t, "Full Name", "required", "string"),
			{
				"label":         "Email Address",
				"field_type_id": env.fieldTypeId(t, "email"),
				"is_required":   true,
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if form.Name != "Contact Form" || form.Version != 1 || !form.IsActive {
		t.Fatalf("unexpected form attributes: %+v", form)
	}
	if len(form.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(form.Fields))
	}
	if form.Fields[0].Label != "Full Name" || form.Fields[1].Label != "Email Address" {
		t.Fatalf("fields not in declared order: %+v", form.Fields)
	}
	if form.Fields[0].Order != 0 || form.Fields[1].Order != 1 {
		t.Fatalf("field orders not defaulted by position: %+v", form.Fields)
	}
	if !form.Fields[1].IsRequired {
		t.Fatal("expected second field to be required")
	}
	if form.Fields[1].FieldType == nil || form.Fields[1].FieldType.Name != "email" {
		t.Fatalf("expected field type to be loaded: %+v", form.Fields[1])
	}

	loaded, err := c.getForm(form.Id.String())
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Id != form.Id || len(loaded.Fields) != 2 {
		t.Fatalf("loaded form does not match created form: %+v", loaded)
	}
}

func TestCreateFormWithoutName(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	_, err := c.createForm(map[string]interface{}{"description": "no name"})
	assertApiError(t, err, http.StatusBadRequest)
}

func TestCreateFormWithUnknownFieldType(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	_, err := c.createForm(map[string]interface{}{
		"name": "Bad Form",
		"fields": []map[string]interface{}{
			{"label": "Field", "field_type_id": "0b71eace-2d11-40b8-b04f-b2d77ba5f38c"},
		},
	})
	apiErr := assertApiError(t, err, http.StatusNotFound)
	if apiErr.Message == "" {
		t.Fatal("expected error message")
	}

	// The form create is transactional, a bad field must not leave a form
	// behind.
	forms, err := c.listForms(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(forms) != 0 {
		t.Fatalf("expected no forms after failed create, got %d", len(forms))
	}
}

func TestGetMissingForm(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	_, err := c.getForm("83a52a35-eccd-4d27-a09f-14bbf4b27f9e")
	assertApiError(t, err, http.StatusNotFound)
}

func TestListFormsActiveOnly(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	active, err := c.createForm(map[string]interface{}{"name": "Active Form"})
	if err != nil {
		t.Fatal(err)
	}

	inactive := false
	_, err = c.createForm(map[string]interface{}{"name": "Inactive Form", "is_active": inactive})
	if err != nil {
		t.Fatal(err)
	}

	all, err := c.listForms(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 forms, got %d", len(all))
	}

	activeForms, err := c.listForms(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(activeForms) != 1 || activeForms[0].Id != active.Id {
		t.Fatalf("expected only the active form, got %+v", activeForms)
	}
}

func TestUpdateFormAttributes(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	form, err := c.createForm(map[string]interface{}{
		"name":        "Survey",
		"description": "original",
		"fields": []map[string]interface{}{
			textFieldSpec(env, t, "Question 1"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := c.updateForm(form.Id.String(), map[string]interface{}{
		"name":      "Survey v2",
		"is_active": false,
	})
	if err != nil {
		t.Fatal(err)
	}

	if updated.Name != "Survey v2" || updated.IsActive {
		t.Fatalf("unexpected updated attributes: %+v", updated)
	}
	if updated.Description != "original" {
		t.Fatalf("description should be untouched, got '%v'", updated.Description)
	}
	if len(updated.Fields) != 1 {
		t.Fatalf("fields should be untouched when not supplied, got %d", len(updated.Fields))
	}
}

func TestUpdateFormReplacesFields(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	form, err := c.createForm(map[string]interface{}{
		"name": "Survey",
		"fields": []map[string]interface{}{
			textFieldSpec(env, t, "Old Question 1"),
			textFieldSpec(env, t, "Old Question 2"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	oldFieldId := form.Fields[0].Id

	updated, err := c.updateForm(form.Id.String(), map[string]interface{}{
		"fields": []map[string]interface{}{
			textFieldSpec(env, t, "New Question"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(updated.Fields) != 1 || updated.Fields[0].Label != "New Question" {
		t.Fatalf("expected field subtree to be replaced, got %+v", updated.Fields)
	}

	_, err = c.getField(oldFieldId.String())
	assertApiError(t, err, http.StatusNotFound)
}

func TestDeleteFormCascades(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	form, err := c.createForm(map[string]interface{}{
		"name": "Ephemeral",
		"fields": []map[string]interface{}{
			textFieldSpec(env, t, "Field"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	fieldId := form.Fields[0].Id

	submission, err := c.submitForm(form.Id.String(), map[string]interface{}{
		fieldId.String(): "some value",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.deleteForm(form.Id.String()); err != nil {
		t.Fatal(err)
	}

	_, err = c.getForm(form.Id.String())
	assertApiError(t, err, http.StatusNotFound)

	_, err = c.getField(fieldId.String())
	assertApiError(t, err, http.StatusNotFound)

	_, err = c.getSubmission(submission.Id.String())
	assertApiError(t, err, http.StatusNotFound)
}

func TestDeleteMissingForm(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	err := c.deleteForm("83a52a35-eccd-4d27-a09f-14bbf4b27f9e")
	assertApiError(t, err, http.StatusNotFound)
}

func TestDuplicateForm(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	dropdown := map[string]interface{}{
		"label":         "Color",
		"field_type_id": env.fieldTypeId(t, "dropdown"),
		"options": []map[string]interface{}{
			{"value": "red", "label": "Red"},
			{"value": "blue", "label": "Blue"},
		},
	}

	form, err := c.createForm(map[string]interface{}{
		"name": "Original",
		"fields": []map[string]interface{}{
			textFieldSpec(env, t, "Name", "required"),
			dropdown,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.submitForm(form.Id.String(), map[string]interface{}{
		form.Fields[0].Id.String(): "bob",
	})
	if err != nil {
		t.Fatal(err)
	}

	copy, err := c.duplicateForm(form.Id.String(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if copy.Id == form.Id {
		t.Fatal("duplicate must get a fresh id")
	}
	if copy.Name != "Original (Copy)" {
		t.Fatalf("unexpected duplicate name '%v'", copy.Name)
	}
	if copy.Version != form.Version+1 {
		t.Fatalf("expected version %d, got %d", form.Version+1, copy.Version)
	}
	if copy.IsActive {
		t.Fatal("duplicate must start inactive")
	}
	if len(copy.Fields) != 2 {
		t.Fatalf("expected 2 duplicated fields, got %d", len(copy.Fields))
	}
	for i, field := range copy.Fields {
		if field.Id == form.Fields[i].Id {
			t.Fatal("duplicated fields must get fresh ids")
		}
	}
	if len(copy.Fields[1].Options) != 2 {
		t.Fatalf("expected options to be duplicated, got %+v", copy.Fields[1].Options)
	}

	// Submissions stay with the original.
	page, err := c.listSubmissions(copy.Id.String(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 {
		t.Fatalf("expected no submissions on duplicate, got %d", page.Total)
	}
}

func TestDuplicateFormVersionOverride(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	form, err := c.createForm(map[string]interface{}{"name": "Original", "version": 4})
	if err != nil {
		t.Fatal(err)
	}

	copy, err := c.duplicateForm(form.Id.String(), map[string]interface{}{"version": 10})
	if err != nil {
		t.Fatal(err)
	}
	if copy.Version != 10 {
		t.Fatalf("expected version override 10, got %d", copy.Version)
	}
}

func TestFieldTypeCatalogSeeded(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	fieldTypes, err := c.listFieldTypes()
	if err != nil {
		t.Fatal(err)
	}

	if len(fieldTypes) != 14 {
		t.Fatalf("expected 14 seeded field types, got %d", len(fieldTypes))
	}

	names := map[string]bool{}
	for _, fieldType := range fieldTypes {
		names[fieldType.Name] = true
	}
	for _, expected := range []string{"text", "email", "dropdown", "checkbox", "date", "file"} {
		if !names[expected] {
			t.Fatalf("missing expected field type '%v' in %v", expected, names)
		}
	}

	var res services.FieldTypeInfo
	err = c.Get(fmt.Sprintf("/field-types/%v", fieldTypes[0].Id)).Do(&res)
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != fieldTypes[0].Name {
		t.Fatalf("expected field type '%v', got '%v'", fieldTypes[0].Name, res.Name)
	}
}
