package validation

import (
	"testing"

	"dynamic_forms/forms/schema"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func field(label string, required bool, rules ...string) schema.FormField {
	return schema.FormField{
		Id:              uuid.New(),
		Label:           label,
		IsRequired:      required,
		ValidationRules: rules,
	}
}

func validateOne(t *testing.T, f schema.FormField, value interface{}) []string {
	t.Helper()

	payload := map[string]interface{}{}
	if value != nil {
		payload[f.Id.String()] = value
	}

	errs, err := Validate([]schema.FormField{f}, payload)
	assert.NoError(t, err)
	return errs[f.Id.String()]
}

func TestRequiredRule(t *testing.T) {
	f := field("Name", false, "required")

	assert.Empty(t, validateOne(t, f, "bob"))
	assert.Equal(t, []string{"The Name field is required."}, validateOne(t, f, nil))
	assert.Equal(t, []string{"The Name field is required."}, validateOne(t, f, ""))
	assert.Equal(t, []string{"The Name field is required."}, validateOne(t, f, "   "))
	assert.Equal(t, []string{"The Name field is required."}, validateOne(t, f, []interface{}{}))
}

func TestRequiredFlagWithoutToken(t *testing.T) {
	f := field("Name", true)

	assert.Empty(t, validateOne(t, f, "bob"))
	assert.Equal(t, []string{"The Name field is required."}, validateOne(t, f, nil))
}

func TestRequiredNotDoubledWhenFlagAndToken(t *testing.T) {
	f := field("Name", true, "required")

	errs := validateOne(t, f, nil)
	assert.Equal(t, []string{"The Name field is required."}, errs)
}

func TestStringRule(t *testing.T) {
	f := field("Name", false, "string")

	assert.Empty(t, validateOne(t, f, "bob"))
	assert.Equal(t, []string{"The Name must be a string."}, validateOne(t, f, 7.0))
}

func TestEmailRule(t *testing.T) {
	f := field("Email", false, "email")

	assert.Empty(t, validateOne(t, f, "bob@mail.com"))
	assert.Equal(t, []string{"The Email must be a valid email address."}, validateOne(t, f, "not-an-email"))
	assert.Equal(t, []string{"The Email must be a valid email address."}, validateOne(t, f, "a@b"))
}

func TestNumericAndIntegerRules(t *testing.T) {
	numeric := field("Price", false, "numeric")
	assert.Empty(t, validateOne(t, numeric, 3.5))
	assert.Empty(t, validateOne(t, numeric, "3.5"))
	assert.Equal(t, []string{"The Price must be a number."}, validateOne(t, numeric, "abc"))

	integer := field("Count", false, "integer")
	assert.Empty(t, validateOne(t, integer, 4.0))
	assert.Empty(t, validateOne(t, integer, "4"))
	assert.Equal(t, []string{"The Count must be an integer."}, validateOne(t, integer, 4.5))
}

func TestBooleanRule(t *testing.T) {
	f := field("Subscribed", false, "boolean")

	assert.Empty(t, validateOne(t, f, true))
	assert.Empty(t, validateOne(t, f, "false"))
	assert.Empty(t, validateOne(t, f, "1"))
	assert.Equal(t, []string{"The Subscribed field must be true or false."}, validateOne(t, f, "yes"))
}

func TestUrlRule(t *testing.T) {
	f := field("Website", false, "url")

	assert.Empty(t, validateOne(t, f, "https://example.com/page"))
	assert.Equal(t, []string{"The Website must be a valid URL."}, validateOne(t, f, "example"))
}

func TestDateRule(t *testing.T) {
	f := field("Birthday", false, "date")

	assert.Empty(t, validateOne(t, f, "1990-07-14"))
	assert.Empty(t, validateOne(t, f, "1990-07-14 10:30:00"))
	assert.Equal(t, []string{"The Birthday is not a valid date."}, validateOne(t, f, "14/07/1990"))
}

func TestAlphaRules(t *testing.T) {
	alpha := field("Name", false, "alpha")
	assert.Empty(t, validateOne(t, alpha, "bob"))
	assert.Equal(t, []string{"The Name may only contain letters."}, validateOne(t, alpha, "bob7"))

	alphaNum := field("Code", false, "alpha_num")
	assert.Empty(t, validateOne(t, alphaNum, "bob7"))
	assert.Equal(t, []string{"The Code may only contain letters and numbers."}, validateOne(t, alphaNum, "bob 7"))
}

func TestMinMaxRules(t *testing.T) {
	f := field("Age", false, "min:18", "max:120")

	assert.Empty(t, validateOne(t, f, 36.0))
	assert.Equal(t, []string{"The Age must be at least 18."}, validateOne(t, f, 10.0))
	assert.Equal(t, []string{"The Age may not be greater than 120."}, validateOne(t, f, 200.0))

	// Strings are measured by length, not value.
	name := field("Name", false, "min:3")
	assert.Empty(t, validateOne(t, name, "bob"))
	assert.Equal(t, []string{"The Name must be at least 3."}, validateOne(t, name, "ab"))
}

func TestInRule(t *testing.T) {
	f := field("Color", false, "in:red,green,blue")

	assert.Empty(t, validateOne(t, f, "green"))
	assert.Equal(t, []string{"The selected Color is invalid."}, validateOne(t, f, "yellow"))
}

func TestRegexRule(t *testing.T) {
	f := field("Zip", false, `regex:^\d{5}$`)

	assert.Empty(t, validateOne(t, f, "02139"))
	assert.Equal(t, []string{"The Zip format is invalid."}, validateOne(t, f, "0213"))
}

func TestFormatRulesSkippedWhenAbsent(t *testing.T) {
	f := field("Email", false, "email", "min:5")

	assert.Empty(t, validateOne(t, f, nil))
	assert.Empty(t, validateOne(t, f, ""))
}

func TestErrorsAccumulateAcrossRulesAndFields(t *testing.T) {
	email := field("Email", true, "email")
	age := field("Age", false, "integer", "min:18")

	errs, err := Validate(
		[]schema.FormField{email, age},
		map[string]interface{}{age.Id.String(): 2.5},
	)
	assert.NoError(t, err)

	assert.Len(t, errs[email.Id.String()], 1)
	assert.Len(t, errs[age.Id.String()], 2)
}

func TestUnknownRuleToken(t *testing.T) {
	f := field("Name", false, "bogus_rule")

	_, err := Validate([]schema.FormField{f}, map[string]interface{}{f.Id.String(): "bob"})
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestMalformedRuleParameter(t *testing.T) {
	f := field("Age", false, "min:abc")

	_, err := Validate([]schema.FormField{f}, map[string]interface{}{f.Id.String(): 20.0})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownRule)
}

func TestUnknownPayloadKeyRejected(t *testing.T) {
	f := field("Name", false)

	errs, err := Validate(
		[]schema.FormField{f},
		map[string]interface{}{
			f.Id.String():                          "bob",
			"9c1cc011-6a3a-48d4-9cb1-8dfb63b4aafe": "stray",
		},
	)
	assert.NoError(t, err)
	assert.Equal(t,
		[]string{"The submitted field does not belong to this form."},
		errs["9c1cc011-6a3a-48d4-9cb1-8dfb63b4aafe"],
	)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "plain", Stringify("plain"))
	assert.Equal(t, "36", Stringify(36.0))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, `["a","b"]`, Stringify([]interface{}{"a", "b"}))
}
