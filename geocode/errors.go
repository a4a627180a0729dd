// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"net/http"
)

// GeocodeError represents geocoding failures.
type GeocodeError struct {
	Type     ErrorType
	Location string
	Message  string
	Err      error
}

// ErrorType classifies geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown is an unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit means the provider's rate limit was hit.
	ErrorTypeRateLimit
	// ErrorTypeTimeout is a connection or deadline timeout.
	ErrorTypeTimeout
	// ErrorTypeNotFound means the provider returned no usable result.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest means the provider rejected the query.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError is a transport-level failure.
	ErrorTypeNetworkError
	// ErrorTypeExhausted means every fallback strategy failed.
	// This is the only terminal, caller-visible geocoding failure.
	ErrorTypeExhausted
)

func (e *GeocodeError) Error() string {
	msg := e.Message
	if e.Location != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Location)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *GeocodeError) Unwrap() error {
	return e.Err
}

// IsExhausted reports whether err is a terminal geocoding failure, meaning
// every strategy in the fallback chain was tried and none produced a
// usable coordinate.
func IsExhausted(err error) bool {
	var geoErr *GeocodeError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeExhausted
	}

	return false
}

// ClassifyHTTPError maps an HTTP status code to a geocoding error type.
func ClassifyHTTPError(statusCode int) *GeocodeError {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &GeocodeError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusBadRequest:
		return &GeocodeError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound:
		return &GeocodeError{
			Type:    ErrorTypeNotFound,
			Message: "location not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodeError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &GeocodeError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}
