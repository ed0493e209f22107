package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/typerush/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var flagNames = map[string]string{
	"Level":      "--level",
	"WeakTop":    "--weak-top",
	"WeakFactor": "--weak-factor",
	"WeakWindow": "--weak-window",
	"Last":       "--last",
	"Window":     "--window",
}

// Validate checks practice settings and reports the first problem in flag terms.
func Validate(cfg model.Config) error {
	return flagError(validate.Struct(cfg))
}

// ValidateStats checks stats filters and reports the first problem in flag terms.
func ValidateStats(cfg model.StatsConfig) error {
	return flagError(validate.Struct(cfg))
}

func flagError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}
	fe := verrs[0]
	name, ok := flagNames[fe.Field()]
	if !ok {
		name = fe.Field()
	}
	if fe.Field() == "Level" {
		return fmt.Errorf("%s must be between %d and 20", name, levelMin(fe))
	}
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Errorf("%s must be >= %s", name, fe.Param())
	case "max":
		return fmt.Errorf("%s must be <= %s", name, fe.Param())
	default:
		return fmt.Errorf("%s is invalid (%s)", name, fe.Tag())
	}
}

// levelMin distinguishes the practice level (1-20) from the stats filter (0-20).
func levelMin(fe validator.FieldError) int {
	if fe.StructNamespace() == "StatsConfig.Level" {
		return 0
	}
	return 1
}
