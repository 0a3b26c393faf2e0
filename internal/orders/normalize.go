// Package orders reads storefront orders for the raffle. Order documents
// are loosely typed: different checkout versions used different field
// names for the same data. Decode is the only place that knows about
// those variants; everything downstream sees models.Order.
package orders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

var ErrMalformed = errors.New("orders: malformed order document")

var (
	numberPaths       = []string{"number", "orderNumber", "order_number", "id"}
	totalPaths        = []string{"total", "totalValue", "total_value", "amount"}
	itemsPaths        = []string{"items", "lineItems", "line_items"}
	quantityPaths     = []string{"quantity", "qty"}
	deliveryPaths     = []string{"deliveryContact", "delivery", "shippingAddress", "address"}
	contactNamePaths  = []string{"name", "fullName", "recipient"}
	contactPhonePaths = []string{"phone", "phoneNumber", "telephone"}
	directNamePaths   = []string{"clientName", "customerName", "customer.name", "name"}
	directPhonePaths  = []string{"clientPhone", "customerPhone", "customer.phone", "phone"}
)

// first returns the first path that exists in r.
func first(r gjson.Result, paths []string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func text(r gjson.Result) string {
	return strings.TrimSpace(r.String())
}

func contact(r gjson.Result, namePaths, phonePaths []string) *models.Contact {
	name := text(first(r, namePaths))
	phone := text(first(r, phonePaths))
	if name == "" && phone == "" {
		return nil
	}
	return &models.Contact{Name: name, Phone: phone}
}

// Decode normalises one raw order document.
func Decode(raw []byte) (models.Order, error) {
	if !gjson.ValidBytes(raw) {
		return models.Order{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	return decodeResult(gjson.ParseBytes(raw))
}

func decodeResult(doc gjson.Result) (models.Order, error) {
	if !doc.IsObject() {
		return models.Order{}, fmt.Errorf("%w: expected object", ErrMalformed)
	}

	number := text(first(doc, numberPaths))
	if number == "" {
		return models.Order{}, fmt.Errorf("%w: no order number", ErrMalformed)
	}

	o := models.Order{
		Number: number,
		Total:  first(doc, totalPaths).Float(),
	}
	first(doc, itemsPaths).ForEach(func(_, item gjson.Result) bool {
		o.Items = append(o.Items, models.OrderItem{Quantity: int(first(item, quantityPaths).Int())})
		return true
	})
	if d := first(doc, deliveryPaths); d.IsObject() {
		o.DeliveryContact = contact(d, contactNamePaths, contactPhonePaths)
	}
	o.DirectContact = contact(doc, directNamePaths, directPhonePaths)
	return o, nil
}

// DecodeList normalises a JSON array of order documents, or an object
// wrapping one under "orders" or "data". Malformed entries are returned as
// errors alongside the orders that did decode.
func DecodeList(raw []byte) ([]models.Order, []error) {
	if !gjson.ValidBytes(raw) {
		return nil, []error{fmt.Errorf("%w: invalid json", ErrMalformed)}
	}
	doc := gjson.ParseBytes(raw)
	if doc.IsObject() {
		doc = first(doc, []string{"orders", "data"})
	}
	if !doc.IsArray() {
		return nil, []error{fmt.Errorf("%w: expected array of orders", ErrMalformed)}
	}

	var (
		out  []models.Order
		errs []error
	)
	for i, item := range doc.Array() {
		o, err := decodeResult(item)
		if err != nil {
			errs = append(errs, fmt.Errorf("order %d: %w", i, err))
			continue
		}
		out = append(out, o)
	}
	return out, errs
}
