package handler

import (
	"net/http"
	"time"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/ports"
)

type PromotionHandler struct {
	Promotions     ports.PromotionApplierInterface
	RequestTimeout time.Duration
}

// ApplyPromotionRequest is a promo code plus the booking draft it applies to
// swagger:model
type ApplyPromotionRequest struct {
	// example: 12
	HotelID int `json:"hotelId"`
	// example: SUMMER10
	Code string `json:"code"`
	// example: 2025-08-01
	CheckIn *model.Date `json:"checkIn,omitempty"`
	// example: 3
	Nights int `json:"nights"`
}

func NewPromotionHandler(promotions ports.PromotionApplierInterface) *PromotionHandler {
	return &PromotionHandler{Promotions: promotions, RequestTimeout: defaultRequestTimeout}
}

// Apply validates a promo code against the draft
// @Summary Apply promo code
// @Description Returns the first active, eligible catalog rule matching the code case-insensitively.
// @Tags Promotions
// @Accept json
// @Produce json
// @Param request body ApplyPromotionRequest true "code and draft"
// @Success 200 {object} model.PromotionRule
// @Failure 404 {object} ErrorResponse "code not applicable"
// @Router /promotions/apply [post]
func (handler *PromotionHandler) Apply(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := requestContext(request, handler.RequestTimeout)
	defer cancel()

	var body ApplyPromotionRequest
	if err := decodeStrict(request, &body); err != nil {
		WriteError(writer, request, err)
		return
	}

	rule, err := handler.Promotions.Apply(ctx, body.HotelID, body.Code, model.BookingDraft{
		CheckIn: body.CheckIn,
		Nights:  body.Nights,
	})
	if err != nil {
		WriteError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, rule)
}
