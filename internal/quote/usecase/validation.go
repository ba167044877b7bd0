package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"devis/internal/domain"
	apperrors "devis/internal/errors"
	"devis/internal/pricing"
)

// ConfigurationValidator checks submitted configurations against the struct
// tags of the domain types and against the pricing catalog.
type ConfigurationValidator struct {
	validate *validator.Validate
	engine   *pricing.Engine
}

func NewConfigurationValidator(engine *pricing.Engine) *ConfigurationValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	return &ConfigurationValidator{validate: v, engine: engine}
}

// Validate checks the full configuration, client contact included.
func (cv *ConfigurationValidator) Validate(cfg domain.QuoteConfiguration) error {
	return cv.check(cv.validate.Struct(cfg), cfg)
}

// ValidateSelection checks only what drives the price.
func (cv *ConfigurationValidator) ValidateSelection(cfg domain.QuoteConfiguration) error {
	return cv.check(cv.validate.StructExcept(cfg, "ClientInfo"), cfg)
}

func (cv *ConfigurationValidator) ValidateClient(info domain.ClientInfo) error {
	details := translate(cv.validate.Struct(info), "clientInfo.")
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (cv *ConfigurationValidator) check(err error, cfg domain.QuoteConfiguration) error {
	details := translate(err, "")

	for i, f := range cfg.Features {
		if f != "" && !cv.engine.KnownFeature(f) {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("features[%d]", i),
				Message: fmt.Sprintf("unknown feature %q", f),
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func translate(err error, prefix string) []apperrors.ValidationDetail {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperrors.ValidationDetail{{Field: "body", Message: err.Error()}}
	}

	details := make([]apperrors.ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		details = append(details, apperrors.ValidationDetail{
			Field:   prefix + field,
			Message: message(fe),
		})
	}
	return details
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
