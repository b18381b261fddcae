package domain

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
)

// GlobalSettings holds the process-wide solver configuration.
type GlobalSettings struct {
	FluidType           string  `json:"fluid_type" yaml:"fluid_type" validate:"required"`
	AmbientTemperature  float64 `json:"ambient_temperature" yaml:"ambient_temperature" validate:"gt=0"`
	AtmosphericPressure float64 `json:"atmospheric_pressure" yaml:"atmospheric_pressure" validate:"gt=0"`
	GlobalRoughness     float64 `json:"global_roughness" yaml:"global_roughness" validate:"gte=0"`
	PropertyIterations  int     `json:"property_iterations" yaml:"property_iterations" validate:"min=1"`
	Tolerance           float64 `json:"tolerance" yaml:"tolerance" validate:"gt=0"`
	MaxIterations       int     `json:"max_iterations" yaml:"max_iterations" validate:"min=1"`
}

// DefaultGlobalSettings returns the settings a new graph starts with.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		FluidType:           "water",
		AmbientTemperature:  293.15,
		AtmosphericPressure: 101325,
		GlobalRoughness:     4.5e-5,
		PropertyIterations:  5,
		Tolerance:           1e-6,
		MaxIterations:       1000,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func settingsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks every field against its range.
func (s GlobalSettings) Validate() error {
	err := settingsValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Value: fe.Value(), Reason: "failed " + fe.Tag()}
	}
	return err
}
