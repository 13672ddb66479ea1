package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "coachhub/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", apperrors.NewValidationError("date", "is required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("parse: %w", apperrors.NewValidationError("date", "bad")), http.StatusBadRequest},
		{"data access", apperrors.NewDataAccessError("load blocks", stderrors.New("conn reset")), http.StatusInternalServerError},
		{"not found", fmt.Errorf("booking X: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"slot taken", apperrors.ErrSlotTaken, http.StatusConflict},
		{"cancel window", fmt.Errorf("booking ABC: %w", apperrors.ErrCancelWindow), http.StatusConflict},
		{"week locked", apperrors.ErrWeekLocked, http.StatusConflict},
		{"unknown drill", apperrors.ErrUnknownDrill, http.StatusNotFound},
		{"http error", apperrors.ErrUnauthorized("nope"), http.StatusUnauthorized},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, apperrors.StatusCode(tc.err))
		})
	}
}

func TestDataAccessErrorUnwrap(t *testing.T) {
	cause := stderrors.New("conn reset")
	err := fmt.Errorf("availability: %w", apperrors.NewDataAccessError("load bookings", cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unable to load data, please try again", apperrors.PublicMessage(err))
	assert.Equal(t, "date: is required", apperrors.PublicMessage(apperrors.NewValidationError("date", "is required")))
}
