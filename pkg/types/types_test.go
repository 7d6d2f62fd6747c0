package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchBody struct {
	CategoryID Nullable[uuid.UUID] `json:"categoryId"`
	Override   Nullable[int]       `json:"override"`
}

func TestNullableDistinguishesAbsentNullAndValue(t *testing.T) {
	id := uuid.New()

	var body patchBody
	require.NoError(t, json.Unmarshal([]byte(`{"categoryId":"`+id.String()+`","override":null}`), &body))
	assert.True(t, body.CategoryID.Set)
	require.NotNil(t, body.CategoryID.Value)
	assert.Equal(t, id, *body.CategoryID.Value)
	assert.True(t, body.Override.Clears())

	body = patchBody{}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.CategoryID.Set)
	assert.False(t, body.Override.Clears())

	assert.Error(t, json.Unmarshal([]byte(`{"override":"x"}`), &body))
}

func TestSubtotal(t *testing.T) {
	price := decimal.NewNullDecimal(decimal.RequireFromString("5.00"))
	assert.True(t, Subtotal(decimal.NewFromInt(2), price).Equal(decimal.RequireFromString("10.00")))

	price = decimal.NewNullDecimal(decimal.RequireFromString("0.335"))
	assert.Equal(t, "0.34", Subtotal(decimal.NewFromInt(1), price).StringFixed(2))

	assert.True(t, Subtotal(decimal.NewFromInt(3), decimal.NullDecimal{}).IsZero())
}

func TestRoundQuantityHalfUp(t *testing.T) {
	assert.Equal(t, "1.235", RoundQuantity(decimal.RequireFromString("1.2345")).String())
	assert.Equal(t, "1.23", RoundMoney(decimal.RequireFromString("1.225")).StringFixed(2))
}
