package raffle

import (
	"fmt"
	"strings"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// Candidate is a typed request to register one order as a participant.
type Candidate struct {
	OrderNumber string  `json:"orderNumber"`
	ClientName  string  `json:"clientName"`
	ClientPhone string  `json:"clientPhone"`
	TotalItems  int     `json:"totalItems"`
	TotalValue  float64 `json:"totalValue"`
}

func (c Candidate) normalized() Candidate {
	c.OrderNumber = strings.TrimSpace(c.OrderNumber)
	c.ClientName = strings.TrimSpace(c.ClientName)
	c.ClientPhone = strings.TrimSpace(c.ClientPhone)
	return c
}

// Validate checks that every required field is present.
func (c Candidate) Validate() error {
	c = c.normalized()
	var missing []string
	if c.OrderNumber == "" {
		missing = append(missing, "orderNumber")
	}
	if c.ClientName == "" {
		missing = append(missing, "clientName")
	}
	if c.ClientPhone == "" {
		missing = append(missing, "clientPhone")
	}
	if c.TotalItems < 0 {
		missing = append(missing, "totalItems")
	}
	if c.TotalValue < 0 {
		missing = append(missing, "totalValue")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing or invalid %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func (c Candidate) Summary() Summary {
	return Summary{ItemCount: c.TotalItems, TotalValue: c.TotalValue}
}

func (c Candidate) entry() models.ParticipantEntry {
	return models.ParticipantEntry{
		OrderNumber: c.OrderNumber,
		ClientName:  c.ClientName,
		ClientPhone: c.ClientPhone,
		TotalItems:  c.TotalItems,
		TotalValue:  c.TotalValue,
	}
}

// CandidateFromOrder derives a candidate from a normalised order. Each of
// name and phone comes from the delivery contact when set there, and
// falls back to the direct contact fields on the order. An order still
// missing either is rejected, never defaulted.
func CandidateFromOrder(o models.Order) (Candidate, error) {
	name := contactField(o, func(c *models.Contact) string { return c.Name })
	phone := contactField(o, func(c *models.Contact) string { return c.Phone })
	if name == "" || phone == "" {
		return Candidate{}, fmt.Errorf("%w: order %q has no contact name/phone", ErrValidation, o.Number)
	}
	c := Candidate{
		OrderNumber: o.Number,
		ClientName:  name,
		ClientPhone: phone,
		TotalItems:  o.ItemCount(),
		TotalValue:  o.Total,
	}.normalized()
	if err := c.Validate(); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

func contactField(o models.Order, get func(*models.Contact) string) string {
	for _, c := range []*models.Contact{o.DeliveryContact, o.DirectContact} {
		if c == nil {
			continue
		}
		if v := strings.TrimSpace(get(c)); v != "" {
			return v
		}
	}
	return ""
}
