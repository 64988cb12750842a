package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"deepsent/internal/types"
)

// ErrInvalidDateRange is returned when the end date precedes the start date.
var ErrInvalidDateRange = errors.New("start date cannot be later than end date")

// Request asks for the report of one ticker over an inclusive date range.
type Request struct {
	Ticker       string    `validate:"required,max=12"`
	StartDate    time.Time `validate:"required"`
	EndDate      time.Time `validate:"required"`
	DailyLimit   int       `validate:"gt=0"`
	Fundamentals *types.Fundamentals
}

// Key returns the cache key of the request.
func (r Request) Key() Key {
	return NewKey(r.Ticker, r.StartDate, r.EndDate, r.DailyLimit)
}

var validate = validator.New()

// Validate checks the request before any collection happens.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid report request: %w", err)
	}
	if r.EndDate.Format(dateLayout) < r.StartDate.Format(dateLayout) {
		return ErrInvalidDateRange
	}
	return nil
}
