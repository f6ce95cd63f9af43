package schema

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type CatalogEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// DefaultFieldTypes is the builtin input kind catalog. Additional entries can
// be supplied from a yaml file via LoadCatalogFile.
var DefaultFieldTypes = []CatalogEntry{
	{Name: "text", Description: "Single line text input"},
	{Name: "email", Description: "Email address input"},
	{Name: "password", Description: "Password input field"},
	{Name: "textarea", Description: "Multi-line text input"},
	{Name: "number", Description: "Numeric input"},
	{Name: "dropdown", Description: "Dropdown select list"},
	{Name: "radio", Description: "Radio button group"},
	{Name: "checkbox", Description: "Checkbox input"},
	{Name: "date", Description: "Date picker"},
	{Name: "time", Description: "Time picker"},
	{Name: "datetime", Description: "Date and time picker"},
	{Name: "file", Description: "File upload field"},
	{Name: "url", Description: "URL input"},
	{Name: "tel", Description: "Telephone number input"},
}

func LoadCatalogFile(path string) ([]CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading field type catalog '%v': %w", path, err)
	}

	var entries []CatalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing field type catalog '%v': %w", path, err)
	}

	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("field type catalog '%v' contains an entry with no name", path)
		}
	}

	return entries, nil
}

// SeedFieldTypes inserts any catalog entries not already present. Entries are
// matched by name so reseeding is idempotent and never rewrites existing ids.
func SeedFieldTypes(db *gorm.DB, entries []CatalogEntry) error {
	return db.Transaction(func(txn *gorm.DB) error {
		var existing []FieldType
		if result := txn.Find(&existing); result.Error != nil {
			slog.Error("sql error listing existing field types", "error", result.Error)
			return ErrDbAccessFailed
		}

		known := make(map[string]struct{}, len(existing))
		for _, fieldType := range existing {
			known[fieldType.Name] = struct{}{}
		}

		for _, entry := range entries {
			if _, ok := known[entry.Name]; ok {
				continue
			}
			fieldType := FieldType{Id: uuid.New(), Name: entry.Name, Description: entry.Description}
			if result := txn.Create(&fieldType); result.Error != nil {
				slog.Error("sql error seeding field type", "name", entry.Name, "error", result.Error)
				return ErrDbAccessFailed
			}
		}

		return nil
	})
}
