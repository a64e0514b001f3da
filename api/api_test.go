package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stylenest/stylenest-backend/models"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrProductNotFound, http.StatusNotFound},
		{models.ErrOrderNotFound, http.StatusNotFound},
		{models.ErrCategoryNotFound, http.StatusNotFound},
		{models.ErrItemNotFound, http.StatusNotFound},
		{models.ErrVariantUnavailable, http.StatusBadRequest},
		{models.ErrInsufficientStock, http.StatusBadRequest},
		{models.ErrInvalidQuantity, http.StatusBadRequest},
		{models.ErrCartEmpty, http.StatusBadRequest},
		{models.ErrInvalidStatus, http.StatusBadRequest},
		{models.ErrCategoryInUse, http.StatusBadRequest},
		{models.ErrDuplicate, http.StatusConflict},
		{models.ErrUnauthorized, http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{errors.New("broken pipe"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusForError(c.err), c.err.Error())
	}
}

func TestStatusForErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading cart: %w", models.ErrCartEmpty)
	assert.Equal(t, http.StatusBadRequest, statusForError(wrapped))
}
