package enums

// CartStatus tracks whether a cart is still mutable.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusConverted CartStatus = "converted"
)
