package handler

import (
	"net/http"
	"time"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/ports"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/service"
)

type PaymentHandler struct {
	Signer         ports.PaymentSignerInterface
	RequestTimeout time.Duration
}

// SignRequest is the field set to sign; fields.signed_field_names lists the
// signed names in order
// swagger:model
type SignRequest struct {
	// example: 12
	HotelID int               `json:"hotelId"`
	Fields  map[string]string `json:"fields"`
}

// SignResponse carries only the signature, never the secret
// swagger:model
type SignResponse struct {
	// example: OfYPzupaleeViWGZBKAhDNoSY4gL3w9k5Fr4Ko1vmX8=
	Signature string `json:"signature"`
}

// CheckoutRequest asks for a complete signed hosted-page form
// swagger:model
type CheckoutRequest struct {
	HotelID int `json:"hotelId"`
	model.CheckoutOrder
}

func NewPaymentHandler(signer ports.PaymentSignerInterface) *PaymentHandler {
	return &PaymentHandler{Signer: signer, RequestTimeout: defaultRequestTimeout}
}

// Sign signs payment redirect fields
// @Summary Sign payment fields
// @Description HMAC-SHA256 over name=value pairs in signed_field_names order, keyed with the hotel's gateway secret.
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body SignRequest true "fields to sign"
// @Success 200 {object} SignResponse
// @Failure 400 {object} ErrorResponse "signed fields missing"
// @Failure 404 {object} ErrorResponse "unknown hotel"
// @Failure 500 {object} ErrorResponse "secret missing or credential lookup failed"
// @Router /payment/sign [post]
func (handler *PaymentHandler) Sign(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := requestContext(request, handler.RequestTimeout)
	defer cancel()

	var body SignRequest
	if err := decodeStrict(request, &body); err != nil {
		WriteError(writer, request, err)
		return
	}

	signature, err := handler.Signer.Sign(ctx, model.SigningRequest{
		HotelID:          body.HotelID,
		Fields:           body.Fields,
		SignedFieldNames: service.ParseSignedFieldNames(body.Fields),
	})
	if err != nil {
		WriteError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, &SignResponse{Signature: signature})
}

// Checkout builds and signs the hosted payment page form
// @Summary Build checkout form
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body CheckoutRequest true "order"
// @Success 200 {object} model.CheckoutForm
// @Failure 400 {object} ErrorResponse "invalid order"
// @Failure 404 {object} ErrorResponse "unknown hotel"
// @Failure 500 {object} ErrorResponse "secret missing or credential lookup failed"
// @Router /payment/checkout [post]
func (handler *PaymentHandler) Checkout(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := requestContext(request, handler.RequestTimeout)
	defer cancel()

	var body CheckoutRequest
	if err := decodeStrict(request, &body); err != nil {
		WriteError(writer, request, err)
		return
	}

	form, err := handler.Signer.BuildCheckout(ctx, body.HotelID, body.CheckoutOrder)
	if err != nil {
		WriteError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, form)
}
