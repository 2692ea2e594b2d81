package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthNotDetermined is returned when the user never granted or denied
	// access to a metric.
	ErrAuthNotDetermined = errors.New("need access to health data")
	// ErrNoData is returned when the requested range holds no samples.
	ErrNoData = errors.New("no data")
	// ErrUnableToComplete wraps transient source failures.
	ErrUnableToComplete = errors.New("unable to complete request")
	// ErrInvalidValue is returned for sample values that fail validation.
	ErrInvalidValue = errors.New("invalid value")
)

// SharingDeniedError is returned when writes to a metric were denied.
type SharingDeniedError struct {
	Metric Metric
}

func (e *SharingDeniedError) Error() string {
	return fmt.Sprintf("no write access for %s", e.Metric)
}

// FailureReason returns a user-facing explanation for a source error, or
// the empty string for errors outside the taxonomy.
func FailureReason(err error) string {
	var denied *SharingDeniedError
	switch {
	case errors.As(err, &denied):
		return fmt.Sprintf("You have denied access to upload your %s data. You can change this in your permissions.", denied.Metric.Title())
	case errors.Is(err, ErrAuthNotDetermined):
		return "You have not granted access to health data. Grant access in your permissions."
	case errors.Is(err, ErrNoData):
		return "There is no data for this health statistic."
	case errors.Is(err, ErrUnableToComplete):
		return "We are unable to complete your request at this time. Please try again later."
	case errors.Is(err, ErrInvalidValue):
		return "Must be a numeric value with a maximum of one decimal place."
	}
	return ""
}
