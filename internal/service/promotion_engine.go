package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/logctx"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/metrics"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/ports"
)

const day = 24 * time.Hour

// FindApplicablePromotion returns the first rule in catalog order whose code
// matches case-insensitively, which is active on now's date and whose type
// specific condition holds for the draft.
func FindApplicablePromotion(catalog []model.PromotionRule, code string, draft model.BookingDraft, now time.Time) (*model.PromotionRule, bool) {
	wanted := strings.ToLower(code)
	today := model.DateOf(now)

	for i := range catalog {
		rule := catalog[i]
		if strings.ToLower(rule.Code) != wanted {
			continue
		}
		if !rule.ActiveOn(today) {
			continue
		}
		if !eligible(rule, draft, now) {
			continue
		}
		return &rule, true
	}
	return nil, false
}

func eligible(rule model.PromotionRule, draft model.BookingDraft, now time.Time) bool {
	switch rule.PromoType {
	case model.PromoTypePercentage:
		if rule.EarlyBookingDays == nil {
			return true
		}
		return LeadDays(draft.CheckIn, now) >= *rule.EarlyBookingDays
	case model.PromoTypeFreeNights:
		if rule.Value == nil {
			return true
		}
		return float64(draft.Nights) >= *rule.Value
	default:
		return true
	}
}

// LeadDays counts calendar days from now's date to check-in, which equals the
// number of days until check-in rounded up. A missing check-in counts as zero.
func LeadDays(checkIn *model.Date, now time.Time) int {
	if checkIn == nil {
		return 0
	}
	// both sides are UTC midnights so DST shifts in now's zone do not leak in
	y, m, d := checkIn.Date()
	start := model.NewDate(y, m, d)
	return int(start.Sub(model.DateOf(now).Time) / day)
}

// PromotionService evaluates promo codes against a hotel's current catalog.
type PromotionService struct {
	PromotionsFetcher ports.PromotionsFetcherInterface
	Now               func() time.Time
}

func NewPromotionService(fetcher ports.PromotionsFetcherInterface) *PromotionService {
	return &PromotionService{PromotionsFetcher: fetcher}
}

func (s *PromotionService) Apply(ctx context.Context, hotelID int, code string, draft model.BookingDraft) (*model.PromotionRule, error) {
	const op = "service.PromotionService.Apply"

	if hotelID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, model.ErrInvalidHotelID)
	}

	catalog, err := s.PromotionsFetcher.FetchPromotions(ctx, hotelID)
	if err != nil {
		metrics.ObservePromotionLookup(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	rule, ok := FindApplicablePromotion(catalog, strings.TrimSpace(code), draft, now)
	if !ok {
		metrics.ObservePromotionLookup(metrics.ResultNone)
		logctx.From(ctx).Info("promo code not applicable",
			slog.Int("hotel_id", hotelID),
			slog.String("code", code),
			slog.Int("catalog_size", len(catalog)),
		)
		return nil, fmt.Errorf("%s: %w", op, model.ErrPromotionNotApplicable)
	}

	metrics.ObservePromotionLookup(metrics.ResultOK)
	logctx.From(ctx).Info("promo code applied",
		slog.Int("hotel_id", hotelID),
		slog.String("code", rule.Code),
		slog.String("promo_type", rule.PromoType.String()),
	)
	return rule, nil
}
