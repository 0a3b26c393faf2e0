package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_DeliveryContact(t *testing.T) {
	o, err := Decode([]byte(`{
		"number": "A1",
		"items": [{"quantity": 2}, {"quantity": 4}],
		"total": 129.9,
		"deliveryContact": {"name": "Maria", "phone": "11999990000"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "A1", o.Number)
	assert.Equal(t, 6, o.ItemCount())
	assert.Equal(t, 129.9, o.Total)
	require.NotNil(t, o.DeliveryContact)
	assert.Equal(t, "Maria", o.DeliveryContact.Name)
	assert.Equal(t, "11999990000", o.DeliveryContact.Phone)
	assert.Nil(t, o.DirectContact)
}

func TestDecode_AlternateFieldNames(t *testing.T) {
	o, err := Decode([]byte(`{
		"order_number": 1042,
		"lineItems": [{"qty": 3}, {"qty": "2"}],
		"amount": "80.50",
		"customerName": " Ana ",
		"customer": {"phone": "11888880000"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "1042", o.Number, "numeric ids are string-normalised")
	assert.Equal(t, 5, o.ItemCount())
	assert.Equal(t, 80.5, o.Total)
	assert.Nil(t, o.DeliveryContact)
	require.NotNil(t, o.DirectContact)
	assert.Equal(t, "Ana", o.DirectContact.Name)
	assert.Equal(t, "11888880000", o.DirectContact.Phone)
}

func TestDecode_ShippingAddressAsDelivery(t *testing.T) {
	o, err := Decode([]byte(`{"id": "x-9", "shippingAddress": {"fullName": "Rui", "phoneNumber": "219"}}`))
	require.NoError(t, err)
	require.NotNil(t, o.DeliveryContact)
	assert.Equal(t, "Rui", o.DeliveryContact.Name)
	assert.Equal(t, "219", o.DeliveryContact.Phone)
	assert.Zero(t, o.ItemCount())
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{`not json`, `[1,2]`, `{"items": []}`, `{"number": null}`} {
		_, err := Decode([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformed, raw)
	}
}

func TestDecodeList(t *testing.T) {
	list, errs := DecodeList([]byte(`{"orders": [{"number": "A"}, {"items": []}, {"number": "B"}]}`))
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Number)
	assert.Equal(t, "B", list[1].Number)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformed)

	list, errs = DecodeList([]byte(`[{"number": "C"}]`))
	assert.Len(t, list, 1)
	assert.Empty(t, errs)

	_, errs = DecodeList([]byte(`{"count": 3}`))
	assert.Len(t, errs, 1)
}
