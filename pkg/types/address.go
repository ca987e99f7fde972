package types

import "strings"

// Address is the shipping/billing address snapshot stored with carts and orders.
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Complete reports whether every required address field is populated.
func (a Address) Complete() bool {
	required := []string{a.FullName, a.Line1, a.City, a.State, a.PostalCode, a.Country}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// Customer is the contact snapshot captured on the checkout form.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
