package validator

import (
	"errors"
	"fmt"
	"strings"

	"carebook/pkg/logger"
	"carebook/pkg/model"
	"carebook/pkg/timeutil"

	"github.com/go-playground/validator/v10"
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

type WorkingHoursValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewWorkingHoursValidator(log *logger.Logger) *WorkingHoursValidator {
	v := validator.New()

	if err := v.RegisterValidation("wall_clock", validateWallClock); err != nil {
		log.Fatal("Failed to register 'wall_clock' validator",
			"error", err,
		)
	}

	log.Info("Working hours validator initialized successfully")

	return &WorkingHoursValidator{
		validate: v,
		logger:   log,
	}
}

func validateWallClock(fl validator.FieldLevel) bool {
	_, err := timeutil.ParseClock(fl.Field().String())
	return err == nil
}

func (v *WorkingHoursValidator) Validate(entry *model.WorkingHours) error {
	if err := v.validate.Struct(entry); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	start, err := timeutil.ParseClock(entry.StartTime)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "StartTime", Message: err.Error()},
		}
	}
	end, err := timeutil.ParseClock(entry.EndTime)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "EndTime", Message: err.Error()},
		}
	}
	if end <= start {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			},
		}
	}

	return nil
}

func (v *WorkingHoursValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "wall_clock":
			message = fmt.Sprintf("%s must be a wall-clock time in HH:mm or HH:mm:ss format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
