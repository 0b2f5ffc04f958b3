package conflicts

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"aqevent/pkg/model"
	"aqevent/pkg/sanitizer"
)

const minPhoneDigits = 10

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\(\)\+\.]+$`)
)

// IsValidEmail applies the deliberately loose address check used by the form.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPhone accepts digits and common separators with at least ten digits.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone) && sanitizer.DigitCount(phone) >= minPhoneDigits
}

// RegisterValidations adds the "event_email" and "event_phone" tags to v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("event_email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("event_phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
}

type requiredField struct {
	field string
	label string
	value func(*model.Event) string
}

var requiredFields = []requiredField{
	{"name", "Event Name", func(e *model.Event) string { return e.Name }},
	{"eventDate", "Event Date", func(e *model.Event) string { return e.EventDate }},
	{"location", "Location", func(e *model.Event) string { return e.Location }},
	{"eventType", "Event Type", func(e *model.Event) string { return e.EventType }},
	{"contactPerson", "Contact Person", func(e *model.Event) string { return e.ContactPerson }},
	{"contactEmail", "Contact Email", func(e *model.Event) string { return e.ContactEmail }},
}

func (d *Detector) checkFields(r *report, c *model.Event) {
	for _, f := range requiredFields {
		if err := d.validate.Var(strings.TrimSpace(f.value(c)), "required"); err != nil {
			r.conflict(model.IssueValidation, f.field, f.label+" is required")
		}
	}

	if email := strings.TrimSpace(c.ContactEmail); email != "" {
		if err := d.validate.Var(email, "event_email"); err != nil {
			r.conflict(model.IssueValidation, "contactEmail", "Please enter a valid email address")
		}
	}

	if phone := strings.TrimSpace(c.ContactNumber); phone != "" {
		if err := d.validate.Var(phone, "event_phone"); err != nil {
			r.warn(model.IssueValidation, model.SeverityLow, "contactNumber", "Phone number format may be invalid")
		}
	}

	if c.Name != "" {
		if err := d.validate.Var(c.Name, fmt.Sprintf("max=%d", d.opts.MaxNameLength)); err != nil {
			r.warn(model.IssueValidation, model.SeverityMedium, "name", "Event name is very long and may be truncated in displays")
		}
	}
}
