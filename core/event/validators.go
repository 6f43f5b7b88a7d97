package event

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Armandk18/taskmanager/core"
)

var (
	visibilityTag  = "visibility"
	visibilityText = "visibility must be one of public or private"

	clockTag  = "clock"
	clockText = "invalid date or time format"

	dateOrderTag  = "dateorder"
	dateOrderText = "end date cannot be before start date"
)

// InitValidators registers the event validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(visibilityTag, func(fl validator.FieldLevel) bool {
		return Visibility(fl.Field().String()).IsValid()
	})
	core.RegisterCustomTranslation(validate, translator, visibilityTag, visibilityText)

	_ = validate.RegisterValidation(clockTag, clockValidation)
	core.RegisterCustomTranslation(validate, translator, clockTag, clockText)

	validate.RegisterStructValidation(newEventStructValidation, NewEvent{})
	core.RegisterCustomTranslation(validate, translator, dateOrderTag, dateOrderText)
}

// clockValidation accepts an HH:MM time or "", which clears the time of an event.
func clockValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// newEventStructValidation only orders well-formed dates; malformed ones are reported by their own tags.
func newEventStructValidation(sl validator.StructLevel) {
	ne := sl.Current().Interface().(NewEvent)
	start, err := time.Parse(dateLayout, ne.StartDate)
	if err != nil {
		return
	}
	end, err := time.Parse(dateLayout, ne.EndDate)
	if err != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(ne.EndDate, "endDate", "EndDate", dateOrderTag, "")
	}
}

// dateOrderError is returned when an update leaves an event ending before it starts.
func dateOrderError() error {
	return core.NewValidationError(nil, core.FieldError{Field: "endDate", Error: dateOrderText})
}
