package service

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

var promoNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func datePtr(d model.Date) *model.Date { return &d }

func daysFromNow(days int) *model.Date {
	return datePtr(model.DateOf(promoNow.AddDate(0, 0, days)))
}

func summer10() model.PromotionRule {
	return model.PromotionRule{
		Code:             "SUMMER10",
		DateFrom:         model.DateOf(promoNow.AddDate(0, -1, 0)),
		DateTo:           model.DateOf(promoNow.AddDate(0, 1, 0)),
		IsActive:         true,
		PromoType:        model.PromoTypePercentage,
		Value:            floatPtr(10),
		EarlyBookingDays: intPtr(14),
	}
}

func freeNights(value float64) model.PromotionRule {
	return model.PromotionRule{
		Code:      "STAY3",
		DateFrom:  model.DateOf(promoNow.AddDate(0, 0, -1)),
		DateTo:    model.DateOf(promoNow.AddDate(0, 0, 1)),
		IsActive:  true,
		PromoType: model.PromoTypeFreeNights,
		Value:     floatPtr(value),
	}
}

func TestFindApplicablePromotion(t *testing.T) {
	expired := summer10()
	expired.DateTo = model.DateOf(promoNow.AddDate(0, 0, -1))

	inactive := summer10()
	inactive.IsActive = false

	notStarted := summer10()
	notStarted.DateFrom = model.DateOf(promoNow.AddDate(0, 0, 1))

	endsToday := summer10()
	endsToday.DateTo = model.DateOf(promoNow)
	endsToday.EarlyBookingDays = nil

	noLeadTime := summer10()
	noLeadTime.EarlyBookingDays = nil

	other := model.PromotionRule{Code: "VIP", DateFrom: model.DateOf(promoNow), DateTo: model.DateOf(promoNow), IsActive: true, PromoType: model.PromoTypeOther}

	tests := []struct {
		name    string
		catalog []model.PromotionRule
		code    string
		draft   model.BookingDraft
		want    bool
	}{
		{"early booking satisfied", []model.PromotionRule{summer10()}, "SUMMER10", model.BookingDraft{CheckIn: daysFromNow(20), Nights: 2}, true},
		{"early booking too late", []model.PromotionRule{summer10()}, "SUMMER10", model.BookingDraft{CheckIn: daysFromNow(5), Nights: 2}, false},
		{"early booking boundary", []model.PromotionRule{summer10()}, "SUMMER10", model.BookingDraft{CheckIn: daysFromNow(14), Nights: 2}, true},
		{"case insensitive", []model.PromotionRule{summer10()}, "summer10", model.BookingDraft{CheckIn: daysFromNow(20)}, true},
		{"missing check-in is zero days", []model.PromotionRule{summer10()}, "SUMMER10", model.BookingDraft{Nights: 2}, false},
		{"percentage without lead time", []model.PromotionRule{noLeadTime}, "SUMMER10", model.BookingDraft{}, true},
		{"code mismatch", []model.PromotionRule{summer10()}, "WINTER", model.BookingDraft{CheckIn: daysFromNow(20)}, false},
		{"expired", []model.PromotionRule{expired}, "SUMMER10", model.BookingDraft{CheckIn: daysFromNow(20)}, false},
		{"not started", []model.PromotionRule{notStarted}, "SUMMER10", model.BookingDraft{CheckIn: daysFromNow(20)}, false},
		{"inactive", []model.PromotionRule{inactive}, "SUMMER10", model.BookingDraft{CheckIn: daysFromNow(20)}, false},
		{"last day inclusive", []model.PromotionRule{endsToday}, "SUMMER10", model.BookingDraft{}, true},
		{"free nights exact", []model.PromotionRule{freeNights(3)}, "stay3", model.BookingDraft{Nights: 3}, true},
		{"free nights more", []model.PromotionRule{freeNights(3)}, "STAY3", model.BookingDraft{Nights: 5}, true},
		{"free nights fewer", []model.PromotionRule{freeNights(3)}, "STAY3", model.BookingDraft{Nights: 2}, false},
		{"other type", []model.PromotionRule{other}, "vip", model.BookingDraft{}, true},
		{"empty catalog", nil, "SUMMER10", model.BookingDraft{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := FindApplicablePromotion(tt.catalog, tt.code, tt.draft, promoNow)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				require.NotNil(t, rule)
			} else {
				assert.Nil(t, rule)
			}
		})
	}
}

func TestFindApplicablePromotion_FirstEligibleInCatalogOrder(t *testing.T) {
	tooLate := summer10()
	tooLate.Value = floatPtr(25)
	tooLate.EarlyBookingDays = intPtr(30)

	fallback := summer10()
	fallback.Value = floatPtr(5)
	fallback.EarlyBookingDays = nil

	better := summer10()
	better.Value = floatPtr(50)
	better.EarlyBookingDays = nil

	rule, ok := FindApplicablePromotion([]model.PromotionRule{tooLate, fallback, better}, "summer10", model.BookingDraft{CheckIn: daysFromNow(20)}, promoNow)
	require.True(t, ok)
	assert.Equal(t, 5.0, *rule.Value)
}

func TestLeadDays(t *testing.T) {
	assert.Equal(t, 0, LeadDays(nil, promoNow))
	// 15:00 today to midnight in 20 days is 19 days 9 hours
	assert.Equal(t, 20, LeadDays(daysFromNow(20), promoNow))
	assert.Equal(t, 0, LeadDays(daysFromNow(0), promoNow))
	assert.Equal(t, -1, LeadDays(daysFromNow(-1), promoNow))
}

func TestLeadDays_AcrossDSTChange(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		checkIn model.Date
		want    int
	}{
		// clocks go back on 2025-11-02, so those two days last 49 hours
		{"fall back at midnight", time.Date(2025, 11, 1, 0, 0, 0, 0, newYork), model.NewDate(2025, 11, 3), 2},
		{"fall back late evening", time.Date(2025, 11, 1, 23, 30, 0, 0, newYork), model.NewDate(2025, 11, 3), 2},
		// clocks go forward on 2025-03-09, so those two days last 47 hours
		{"spring forward at midnight", time.Date(2025, 3, 8, 0, 0, 0, 0, newYork), model.NewDate(2025, 3, 10), 2},
		{"spring forward just after midnight", time.Date(2025, 3, 8, 0, 30, 0, 0, newYork), model.NewDate(2025, 3, 10), 2},
		{"same day", time.Date(2025, 11, 2, 23, 0, 0, 0, newYork), model.NewDate(2025, 11, 2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LeadDays(&tt.checkIn, tt.now))
		})
	}
}

func TestFindApplicablePromotion_EarlyBookingAcrossDSTChange(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2025, 11, 1, 0, 0, 0, 0, newYork)

	rule := summer10()
	rule.DateFrom = model.NewDate(2025, 10, 1)
	rule.DateTo = model.NewDate(2025, 12, 31)
	rule.EarlyBookingDays = intPtr(3)

	// two calendar days ahead must not pass a three day early-booking rule
	_, ok := FindApplicablePromotion([]model.PromotionRule{rule}, "summer10", model.BookingDraft{CheckIn: datePtr(model.NewDate(2025, 11, 3)), Nights: 1}, now)
	assert.False(t, ok)

	_, ok = FindApplicablePromotion([]model.PromotionRule{rule}, "summer10", model.BookingDraft{CheckIn: datePtr(model.NewDate(2025, 11, 4)), Nights: 1}, now)
	assert.True(t, ok)
}

func TestPromotionService_Apply(t *testing.T) {
	ctx := context.Background()
	fetcher := new(MockPromotionsFetcher)
	fetcher.On("FetchPromotions", ctx, 4).Return([]model.PromotionRule{summer10()}, nil)

	promotionService := NewPromotionService(fetcher)
	promotionService.Now = func() time.Time { return promoNow }

	rule, err := promotionService.Apply(ctx, 4, " summer10 ", model.BookingDraft{CheckIn: daysFromNow(20), Nights: 2})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", rule.Code)

	_, err = promotionService.Apply(ctx, 4, "summer10", model.BookingDraft{CheckIn: daysFromNow(5), Nights: 2})
	assert.ErrorIs(t, err, model.ErrPromotionNotApplicable)
}

func TestPromotionService_FetchFailure(t *testing.T) {
	ctx := context.Background()
	fetchErr := errors.New("pms unavailable")
	fetcher := new(MockPromotionsFetcher)
	fetcher.On("FetchPromotions", ctx, 4).Return(nil, fetchErr)

	_, err := NewPromotionService(fetcher).Apply(ctx, 4, "SUMMER10", model.BookingDraft{})
	assert.ErrorIs(t, err, fetchErr)

	_, err = NewPromotionService(fetcher).Apply(ctx, 0, "SUMMER10", model.BookingDraft{})
	assert.ErrorIs(t, err, model.ErrInvalidHotelID)
}
