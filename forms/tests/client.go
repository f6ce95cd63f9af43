package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"dynamic_forms/forms/services"

	"github.com/go-chi/chi/v5"
)

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	json     interface{}
	body     io.Reader
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
	}
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

func (r *httpTestRequest) Body(body io.Reader) *httpTestRequest {
	r.body = body
	return r
}

// apiError carries the status and envelope contents of a failed request so
// tests can assert on the exact response code and validation messages.
type apiError struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed with status %d: %v", e.Status, e.Message)
}

type responseEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// response data will be parsed into result, passing nil indicates that no
// result is expected.
func (r *httpTestRequest) Do(result interface{}) error {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	var envelope responseEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("error parsing %v response from endpoint %v: %w", r.method, r.endpoint, err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return &apiError{Status: res.StatusCode, Message: envelope.Message, Errors: envelope.Errors}
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("error parsing %v response data from endpoint %v: %w", r.method, r.endpoint, err)
		}
	}

	return nil
}

type client struct {
	api chi.Router
}

func (c *client) Get(endpoint string) *httpTestRequest {
	return newHttpTestRequest(c.api, "GET", endpoint)
}

func (c *client) Post(endpoint string) *httpTestRequest {
	return newHttpTestRequest(c.api, "POST", endpoint)
}

func (c *client) Put(endpoint string) *httpTestRequest {
	return newHttpTestRequest(c.api, "PUT", endpoint)
}

func (c *client) Delete(endpoint string) *httpTestRequest {
	return newHttpTestRequest(c.api, "DELETE", endpoint)
}

func (c *client) listFieldTypes() ([]services.FieldTypeInfo, error) {
	var res []services.FieldTypeInfo
	err := c.Get("/field-types").Do(&res)
	return res, err
}

func (c *client) createForm(body map[string]interface{}) (services.FormInfo, error) {
	var res services.FormInfo
	err := c.Post("/forms").Json(body).Do(&res)
	return res, err
}

func (c *client) getForm(formId string) (services.FormInfo, error) {
	var res services.FormInfo
	err := c.Get(fmt.Sprintf("/forms/%v", formId)).Do(&res)
	return res, err
}

func (c *client) listForms(activeOnly bool) ([]services.FormInfo, error) {
	endpoint := "/forms"
	if activeOnly {
		endpoint += "?active_only=true"
	}
	var res []services.FormInfo
	err := c.Get(endpoint).Do(&res)
	return res, err
}

func (c *client) updateForm(formId string, body map[string]interface{}) (services.FormInfo, error) {
	var res services.FormInfo
	err := c.Put(fmt.Sprintf("/forms/%v", formId)).Json(body).Do(&res)
	return res, err
}

func (c *client) deleteForm(formId string) error {
	return c.Delete(fmt.Sprintf("/forms/%v", formId)).Do(nil)
}

func (c *client) duplicateForm(formId string, body map[string]interface{}) (services.FormInfo, error) {
	var res services.FormInfo
	req := c.Post(fmt.Sprintf("/forms/%v/duplicate", formId))
	if body != nil {
		req = req.Json(body)
	}
	err := req.Do(&res)
	return res, err
}

func (c *client) createField(body map[string]interface{}) (services.FieldInfo, error) {
	var res services.FieldInfo
	err := c.Post("/fields").Json(body).Do(&res)
	return res, err
}

func (c *client) getField(fieldId string) (services.FieldInfo, error) {
	var res services.FieldInfo
	err := c.Get(fmt.Sprintf("/fields/%v", fieldId)).Do(&res)
	return res, err
}

func (c *client) listFields(formId string) ([]services.FieldInfo, error) {
	var res []services.FieldInfo
	err := c.Get(fmt.Sprintf("/fields?form_id=%v", formId)).Do(&res)
	return res, err
}

func (c *client) updateField(fieldId string, body map[string]interface{}) (services.FieldInfo, error) {
	var res services.FieldInfo
	err := c.Put(fmt.Sprintf("/fields/%v", fieldId)).Json(body).Do(&res)
	return res, err
}

func (c *client) deleteField(fieldId string) error {
	return c.Delete(fmt.Sprintf("/fields/%v", fieldId)).Do(nil)
}

func (c *client) submitForm(formId string, data map[string]interface{}) (services.SubmissionInfo, error) {
	var res services.SubmissionInfo
	err := c.Post(fmt.Sprintf("/forms/%v/submit", formId)).Json(map[string]interface{}{"data": data}).Do(&res)
	return res, err
}

func (c *client) getSubmission(submissionId string) (services.SubmissionInfo, error) {
	var res services.SubmissionInfo
	err := c.Get(fmt.Sprintf("/submissions/%v", submissionId)).Do(&res)
	return res, err
}

func (c *client) deleteSubmission(submissionId string) error {
	return c.Delete(fmt.Sprintf("/submissions/%v", submissionId)).Do(nil)
}

type submissionPage struct {
	Submissions []services.SubmissionInfo `json:"submissions"`
	Total       int64                     `json:"total"`
	Page        int                       `json:"page"`
	PerPage     int                       `json:"per_page"`
	TotalPages  int                       `json:"total_pages"`
}

func (c *client) listSubmissions(formId string, page, perPage int) (submissionPage, error) {
	var res submissionPage
	err := c.Get(fmt.Sprintf("/submissions?form_id=%v&page=%d&per_page=%d", formId, page, perPage)).Do(&res)
	return res, err
}

func (c *client) querySubmissions(formId string, body map[string]interface{}) ([]services.SubmissionInfo, error) {
	var res []services.SubmissionInfo
	err := c.Post(fmt.Sprintf("/forms/%v/submissions/query", formId)).Json(body).Do(&res)
	return res, err
}

type submissionStats struct {
	Total  int64   `json:"total"`
	Latest *string `json:"latest"`
	Oldest *string `json:"oldest"`
}

func (c *client) submissionStatistics(formId string) (submissionStats, error) {
	var res submissionStats
	err := c.Get(fmt.Sprintf("/forms/%v/submissions/statistics", formId)).Do(&res)
	return res, err
}
