package tests

import (
	"net/http"
	"testing"

	"dynamic_forms/forms/services"
)

type queryTestFixture struct {
	form   services.FormInfo
	nameId string
	cityId string
	ageId  string
	ada    services.SubmissionInfo
	grace  services.SubmissionInfo
	alan   services.SubmissionInfo
}

func setupQueryFixture(t *testing.T, env *testEnv, c client) queryTestFixture {
	form, err := c.createForm(map[string]interface{}{
		"name": "People",
		"fields": []map[string]interface{}{
			textFieldSpec(env, t, "Name"),
			textFieldSpec(env, t, "City"),
			{
				"label":         "Age",
				"field_type_id": env.fieldTypeId(t, "number"),
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	fixture := queryTestFixture{
		form:   form,
		nameId: form.Fields[0].Id.String(),
		cityId: form.Fields[1].Id.String(),
		ageId:  form.Fields[2].Id.String(),
	}

	submit := func(name, city string, age int) services.SubmissionInfo {
		submission, err := c.submitForm(form.Id.String(), map[string]interface{}{
			fixture.nameId: name,
			fixture.cityId: city,
			fixture.ageId:  age,
		})
		if err != nil {
			t.Fatal(err)
		}
		return submission
	}

	fixture.ada = submit("Ada Lovelace", "London", 36)
	fixture.grace = submit("Grace Hopper", "New York", 85)
	fixture.alan = submit("Alan Turing", "London", 41)

	return fixture
}

func submissionIds(submissions []services.SubmissionInfo) map[string]bool {
	ids := map[string]bool{}
	for _, submission := range submissions {
		ids[submission.Id.String()] = true
	}
	return ids
}

func TestQueryByFieldValueSubstring(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()
	fixture := setupQueryFixture(t, env, c)

	results, err := c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{
		"field_id": fixture.nameId,
		"value":    "Lovelace",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Id != fixture.ada.Id {
		t.Fatalf("expected only ada, got %+v", submissionIds(results))
	}

	// Substring match, not equality.
	results, err = c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{
		"field_id": fixture.nameId,
		"value":    "a",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected all 3 submissions for substring 'a', got %d", len(results))
	}
}

func TestQueryByFieldValueNoMatches(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()
	fixture := setupQueryFixture(t, env, c)

	results, err := c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{
		"field_id": fixture.nameId,
		"value":    "Nobody",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no matches, got %d", len(results))
	}
}

func TestQueryByFilters(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()
	fixture := setupQueryFixture(t, env, c)

	// Each filter applies to its own value row. A single row could never hold
	// both the city and the name at once.
	results, err := c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{
		"filters": []map[string]interface{}{
			{"field_id": fixture.cityId, "operator": "=", "value": "London"},
			{"field_id": fixture.nameId, "operator": "LIKE", "value": "Turing"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Id != fixture.alan.Id {
		t.Fatalf("expected only alan, got %+v", submissionIds(results))
	}
}

func TestQueryByFiltersDefaultOperator(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()
	fixture := setupQueryFixture(t, env, c)

	// Omitted operator falls back to substring matching.
	results, err := c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{
		"filters": []map[string]interface{}{
			{"field_id": fixture.cityId, "value": "Lond"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ids := submissionIds(results)
	if len(ids) != 2 || !ids[fixture.ada.Id.String()] || !ids[fixture.alan.Id.String()] {
		t.Fatalf("expected ada and alan, got %+v", ids)
	}
}

func TestQueryByFiltersComparison(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()
	fixture := setupQueryFixture(t, env, c)

	results, err := c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{
		"filters": []map[string]interface{}{
			{"field_id": fixture.ageId, "operator": ">", "value": "40"},
			{"field_id": fixture.cityId, "operator": "=", "value": "London"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Id != fixture.alan.Id {
		t.Fatalf("expected only alan, got %+v", submissionIds(results))
	}
}

func TestQueryRejectsUnsupportedOperator(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()
	fixture := setupQueryFixture(t, env, c)

	_, err := c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{
		"filters": []map[string]interface{}{
			{"field_id": fixture.nameId, "operator": "DROP TABLE", "value": "x"},
		},
	})
	assertApiError(t, err, http.StatusBadRequest)
}

func TestQueryRejectsEmptyCriteria(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()
	fixture := setupQueryFixture(t, env, c)

	_, err := c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{})
	assertApiError(t, err, http.StatusBadRequest)

	_, err = c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{
		"filters": []map[string]interface{}{},
	})
	assertApiError(t, err, http.StatusBadRequest)
}

func TestQueryMissingForm(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()

	_, err := c.querySubmissions("83a52a35-eccd-4d27-a09f-14bbf4b27f9e", map[string]interface{}{
		"filters": []map[string]interface{}{},
	})
	assertApiError(t, err, http.StatusNotFound)
}

func TestQueryScopedToForm(t *testing.T) {
	env := setupTestEnv(t)
	c := env.newClient()
	fixture := setupQueryFixture(t, env, c)

	other, err := c.createForm(map[string]interface{}{
		"name": "Other",
		"fields": []map[string]interface{}{
			textFieldSpec(env, t, "Name"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.submitForm(other.Id.String(), map[string]interface{}{
		other.Fields[0].Id.String(): "Ada Lovelace",
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := c.querySubmissions(fixture.form.Id.String(), map[string]interface{}{
		"field_id": fixture.nameId,
		"value":    "Ada",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Id != fixture.ada.Id {
		t.Fatalf("query leaked across forms: %+v", submissionIds(results))
	}
}
