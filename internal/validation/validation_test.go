package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-microservices/internal/service"
)

func TestValidate_Valid(t *testing.T) {
	body := []byte(`{"name":"Ann","email":"ann@example.com","password":"secret1"}`)
	assert.NoError(t, Register.Validate(body))
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Register.Validate([]byte(`{"email":"ann@example.com"}`))

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "password")
	assert.NotContains(t, verr.Fields, "email")
}

func TestValidate_WrongType(t *testing.T) {
	err := ProductCreate.Validate([]byte(`{"name":"Lamp","description":"d","price":"cheap","category":"home"}`))

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "price")
}

func TestValidate_NegativeStock(t *testing.T) {
	err := ProductUpdate.Validate([]byte(`{"stock":-1}`))

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "stock")
}

func TestValidate_InvalidJSON(t *testing.T) {
	err := Login.Validate([]byte(`{"email":`))

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Invalid JSON"}, verr.Fields["body"])
}

func TestValidate_EmptyBodyTreatedAsObject(t *testing.T) {
	assert.NoError(t, OrderCreate.Validate(nil))
	assert.Error(t, OrderStatus.Validate(nil))
}

func TestValidate_QuantityAndDeltaBounds(t *testing.T) {
	var verr *service.ValidationError

	require.ErrorAs(t, CartAdd.Validate([]byte(`{"productId":"p1","quantity":9223372036854775807}`)), &verr)
	assert.Contains(t, verr.Fields, "quantity")

	require.ErrorAs(t, CartUpdate.Validate([]byte(`{"quantity":1001}`)), &verr)
	assert.Contains(t, verr.Fields, "quantity")

	require.ErrorAs(t, StockAdjust.Validate([]byte(`{"delta":1000001}`)), &verr)
	assert.Contains(t, verr.Fields, "delta")

	assert.NoError(t, CartUpdate.Validate([]byte(`{"quantity":1000}`)))
	assert.NoError(t, StockAdjust.Validate([]byte(`{"delta":-3}`)))
}
