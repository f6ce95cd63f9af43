package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func ParseRequestBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dest)
	if err != nil {
		slog.Error("error parsing request body", "error", err)
		WriteErrorResponse(w, fmt.Sprintf("error parsing request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// ApiResponse is the envelope every endpoint returns. Errors is populated
// only for field level validation failures.
type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func writeJson(w http.ResponseWriter, status int, res ApiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(res)
	if err != nil {
		slog.Error("error serializing response body", "error", err)
	}
}

func WriteDataResponse(w http.ResponseWriter, data interface{}) {
	writeJson(w, http.StatusOK, ApiResponse{Success: true, Data: data})
}

func WriteCreatedResponse(w http.ResponseWriter, message string, data interface{}) {
	writeJson(w, http.StatusCreated, ApiResponse{Success: true, Message: message, Data: data})
}

func WriteMessageDataResponse(w http.ResponseWriter, message string, data interface{}) {
	writeJson(w, http.StatusOK, ApiResponse{Success: true, Message: message, Data: data})
}

func WriteMessageResponse(w http.ResponseWriter, message string) {
	writeJson(w, http.StatusOK, ApiResponse{Success: true, Message: message})
}

func WriteErrorResponse(w http.ResponseWriter, message string, status int) {
	writeJson(w, status, ApiResponse{Success: false, Message: message})
}

func WriteValidationErrorResponse(w http.ResponseWriter, errors interface{}) {
	writeJson(w, http.StatusUnprocessableEntity, ApiResponse{Success: false, Message: "Validation failed", Errors: errors})
}

func URLParamUUID(r *http.Request, key string) (uuid.UUID, error) {
	param := chi.URLParam(r, key)

	if len(param) == 0 {
		return uuid.Nil, fmt.Errorf("missing {%v} url parameter", key)
	}

	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid '%v' provided: %w", param, err)
	}

	return id, nil
}

func QueryParamUUID(r *http.Request, key string) (uuid.UUID, error) {
	param := r.URL.Query().Get(key)

	if len(param) == 0 {
		return uuid.Nil, fmt.Errorf("missing required '%v' query parameter", key)
	}

	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid '%v' provided: %w", param, err)
	}

	return id, nil
}

func QueryParamInt(r *http.Request, key string, defaultValue int) (int, error) {
	param := r.URL.Query().Get(key)
	if param == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("invalid integer '%v' for '%v' query parameter", param, key)
	}
	return value, nil
}

func BoolEnvVar(key string) bool {
	value := os.Getenv(key)
	return strings.ToLower(value) == "true"
}

func IntEnvVar(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("unable to parse integer from env var %v='%v': %v", key, value, err)
	}
	return i
}

func OptionalEnv(key string) string {
	return os.Getenv(key)
}
