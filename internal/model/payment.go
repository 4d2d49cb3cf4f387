package model

// SignedFieldNamesKey is the field listing the names covered by the signature.
const (
	SignedFieldNamesKey   = "signed_field_names"
	UnsignedFieldNamesKey = "unsigned_field_names"
)

// SigningRequest is a set of payment-redirect fields together with the
// ordered list of names that must be signed.
type SigningRequest struct {
	HotelID          int
	Fields           map[string]string
	SignedFieldNames []string
}

// GatewayCredential is one payment-gateway credential record of a hotel.
// SecretKey never leaves the server.
type GatewayCredential struct {
	HotelID   int    `json:"hotelId"`
	AccessKey string `json:"accessKey"`
	ProfileID string `json:"profileId"`
	SecretKey string `json:"secretKey"`
}

// CheckoutOrder holds what the guest pays for at checkout.
type CheckoutOrder struct {
	ReferenceNumber string `json:"referenceNumber"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency,omitempty"`
	Locale          string `json:"locale,omitempty"`
}

// CheckoutForm is the signed field set posted to the hosted payment page.
type CheckoutForm struct {
	Fields    map[string]string `json:"fields"`
	Signature string            `json:"signature"`
}
