package checkout

import (
	"strings"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/common"
)

// Mode is how the shopper receives the order.
type Mode string

const (
	ModePickup   Mode = "pickup"
	ModeDelivery Mode = "delivery"
)

// Customer is the contact information collected on the cart page.
type Customer struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Mode    Mode   `json:"mode" validate:"oneof=pickup delivery"`
	Address string `json:"address" validate:"required_if=Mode delivery"`
	Note    string `json:"note"`
}

// Normalize trims every field and defaults the mode to pickup.
func (c Customer) Normalize() Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Mode = Mode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	if c.Mode == "" {
		c.Mode = ModePickup
	}
	c.Address = strings.TrimSpace(c.Address)
	c.Note = strings.TrimSpace(c.Note)
	return c
}

// Validate checks that name and phone are present, and the address too when
// the order is delivered. Failures are 422 AppErrors naming each field.
func (c Customer) Validate(v *common.Validator) error {
	if v == nil {
		v = common.NewValidator()
	}
	return v.Struct(c)
}
