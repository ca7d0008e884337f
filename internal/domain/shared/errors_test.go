package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Format(t *testing.T) {
	err := NewDomainError("chart", "ComputeChart", ErrValueOutOfRange, "year 1850 outside 1900..2100")
	assert.Equal(t, "chart.ComputeChart: year 1850 outside 1900..2100", err.Error())

	cause := errors.New("parsing time")
	wrapped := WrapError("birth", "NewInfo", ErrInvalidFormat, "bad birth date", cause)
	assert.Equal(t, "birth.NewInfo: bad birth date: parsing time", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, ErrInvalidFormat)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		validation  bool
		notFound    bool
		computation bool
		assembly    bool
	}{
		{"feature off", NewDomainError("query", "Daily", ErrFeatureDisabled, "off"), false, false, false, false},
		{"out of range", Validationf("rhythm", "AnalyzeMonth", ErrValueOutOfRange, "month %d", 13), true, false, false, false},
		{"role", NewDomainError("role", "ParseRole", ErrUnsupportedRole, "pilot"), true, false, false, false},
		{"profile missing", fmt.Errorf("load: %w", ErrProfileNotFound), false, true, false, false},
		{"missing table", WrapError("chart", "Relation", ErrMissingTable, "no entry", nil), false, false, true, false},
		{"computation", Computationf("rhythm", "AnalyzeMonth", "got %d days", 30), false, false, true, false},
		{"assembly", NewDomainError("content", "Assemble", ErrAssembly, "unfilled {theme}"), false, false, false, true},
		{"plain", errors.New("boom"), false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.computation, IsComputation(tt.err))
			assert.Equal(t, tt.assembly, IsAssembly(tt.err))
		})
	}
}

func TestIsFeatureDisabled(t *testing.T) {
	assert.True(t, IsFeatureDisabled(fmt.Errorf("daily: %w", ErrFeatureDisabled)))
	assert.False(t, IsFeatureDisabled(ErrUnsupportedRole))
}

func TestProfileErrors(t *testing.T) {
	assert.ErrorIs(t, ErrProfileExists, ErrAlreadyExists)
	assert.False(t, IsNotFound(ErrProfileExists))
}
