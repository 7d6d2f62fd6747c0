package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name" validate:"required,max=5"`
	Days *int   `json:"days" validate:"omitempty,min=0"`
}

func TestDecodeJSONBody(t *testing.T) {
	var ok sample
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"tea","days":2}`))
	require.NoError(t, DecodeJSONBody(req, &ok))
	assert.Equal(t, "tea", ok.Name)

	cases := map[string]string{
		"empty":         ``,
		"unknown field": `{"name":"tea","extra":1}`,
		"missing name":  `{"days":1}`,
		"too long":      `{"name":"toolongname"}`,
		"negative days": `{"name":"tea","days":-1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dest sample
			err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &dest)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

type stockSample struct {
	Quantity decimal.Decimal  `json:"quantity" validate:"gte=0"`
	Rate     *decimal.Decimal `json:"rate" validate:"omitempty,gte=0"`
	Unit     string           `json:"unit" validate:"required,unit_of_measure"`
	Per      *string          `json:"per" validate:"omitempty,consumption_unit"`
}

func TestDecodeJSONBodyInventoryTags(t *testing.T) {
	var ok stockSample
	body := `{"quantity":"1.5","rate":"0.25","unit":"kg","per":"semana"}`
	require.NoError(t, DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &ok))
	assert.Equal(t, "1.5", ok.Quantity.String())

	cases := map[string]struct {
		body  string
		field string
	}{
		"negative quantity": {`{"quantity":"-1","unit":"kg"}`, "quantity"},
		"negative rate":     {`{"quantity":"1","rate":"-0.1","unit":"kg"}`, "rate"},
		"unknown unit":      {`{"quantity":"1","unit":"ton"}`, "unit"},
		"unknown period":    {`{"quantity":"1","unit":"kg","per":"year"}`, "per"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var dest stockSample
			err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)), &dest)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Contains(t, typed.Details(), tc.field)
		})
	}
}

func TestDecodeJSONBodyRejectsTrailingData(t *testing.T) {
	var dest sample
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`)), &dest)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParsePagination(t *testing.T) {
	params, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=5&cursor=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, 5, params.Limit)
	assert.Equal(t, "abc", params.Cursor)

	_, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=0", nil))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("id", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	got, err := ParseUUIDParam(withParam(id.String()), "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(withParam("nope"), "id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
