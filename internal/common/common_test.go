package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type moneyPayload struct {
	Price string `json:"price" validate:"required,money"`
	Name  string `json:"name" validate:"required"`
}

func TestValidatorMoneyTag(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Struct(moneyPayload{Price: "12,50", Name: "x"}))

	err := v.Struct(moneyPayload{Price: "-1"})
	require.Error(t, err)
	appErr := ValidationError(err)
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	fields := appErr.Details.(map[string]any)["fields"].(map[string]string)
	require.Equal(t, "money", fields["price"])
	require.Equal(t, "required", fields["name"])
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("1,5")
	require.NoError(t, err)
	require.Equal(t, "1.5", d.String())

	_, err = ParseDecimal("")
	require.Error(t, err)
	_, err = ParseDecimal("abc")
	require.Error(t, err)
}

func TestWriteAppErrorHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":{"code":"INTERNAL","message":"internal error"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteAppError(rec, NotFound("kit not found", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 21)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, int32(10), Offset(2, 10))
	require.Equal(t, int32(0), Offset(0, 10))
}
