package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"aqevent/internal/conflicts"
	"aqevent/internal/timerange"
	"aqevent/pkg/logger"
	"aqevent/pkg/model"
)

const (
	MaxFilesPerEvent = 10
	MaxBatchSize     = 100
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details flattens the errors for an API response.
func (v ValidationErrors) Details() map[string]any {
	out := make(map[string]any, len(v))
	for _, err := range v {
		out[err.Field] = err.Message
	}
	return out
}

type EventValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEventValidator(log *logger.Logger) *EventValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	if err := conflicts.RegisterValidations(v); err != nil {
		log.Fatal("Failed to register event format validators",
			"error", err,
		)
	}
	if err := v.RegisterValidation("event_date", validateEventDate); err != nil {
		log.Fatal("Failed to register 'event_date' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("event_clock", validateEventClock); err != nil {
		log.Fatal("Failed to register 'event_clock' validator",
			"error", err,
		)
	}

	return &EventValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func validateEventDate(fl validator.FieldLevel) bool {
	_, ok := timerange.ParseDate(fl.Field().String(), time.UTC)
	return ok
}

func validateEventClock(fl validator.FieldLevel) bool {
	_, ok := timerange.ParseClock(fl.Field().String())
	return ok
}

func (v *EventValidator) Validate(ev *model.Event) error {
	if ev == nil {
		return ValidationErrors{{Field: "event", Message: "event is required"}}
	}
	if err := v.validate.Struct(ev); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if errs := clockOrder(ev); len(errs) > 0 {
		return errs
	}
	return nil
}

func clockOrder(ev *model.Event) ValidationErrors {
	var errs ValidationErrors
	pairs := []struct {
		field      string
		start, end string
	}{
		{"reservationEndTime", ev.ReservationStartTime, ev.ReservationEndTime},
		{"eventEndTime", ev.EventStartTime, ev.EventEndTime},
	}
	for _, p := range pairs {
		if p.start == "" || p.end == "" {
			continue
		}
		s, okS := timerange.ParseClock(p.start)
		e, okE := timerange.ParseClock(p.end)
		if okS && okE && e <= s {
			errs = append(errs, ValidationError{
				Field:   p.field,
				Message: fmt.Sprintf("%s must be after the start time", p.field),
			})
		}
	}
	return errs
}

func (v *EventValidator) ValidateFiles(files []model.FileUpload) error {
	if len(files) > MaxFilesPerEvent {
		return ValidationErrors{{
			Field:   "files",
			Message: fmt.Sprintf("at most %d files can be attached to an event", MaxFilesPerEvent),
		}}
	}
	for i := range files {
		if err := v.validate.Struct(files[i]); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				errs := v.translateValidationErrors(validationErrs)
				for j := range errs {
					errs[j].Field = fmt.Sprintf("files[%d].%s", i, errs[j].Field)
				}
				return errs
			}
			return err
		}
	}
	return nil
}

func (v *EventValidator) ValidateIDs(ids []string) error {
	if err := v.validate.Var(ids, fmt.Sprintf("required,min=1,max=%d,dive,required", MaxBatchSize)); err != nil {
		return ValidationErrors{{
			Field:   "eventIds",
			Message: fmt.Sprintf("between 1 and %d non-empty event ids are required", MaxBatchSize),
		}}
	}
	return nil
}

func (v *EventValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "event_email":
			message = "Please enter a valid email address"
		case "event_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "event_clock":
			message = fmt.Sprintf("%s must be a time in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
