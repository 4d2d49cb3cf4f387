package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type PromoType int

const (
	PromoTypeOther PromoType = iota
	PromoTypePercentage
	PromoTypeFreeNights
)

func (t PromoType) String() string {
	switch t {
	case PromoTypePercentage:
		return "PERCENTAGE"
	case PromoTypeFreeNights:
		return "FREE_NIGHTS"
	default:
		return "OTHER"
	}
}

// ParsePromoType maps the PMS promo type name onto PromoType.
// Unknown names are OTHER.
func ParsePromoType(s string) PromoType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PERCENTAGE":
		return PromoTypePercentage
	case "FREE_NIGHTS":
		return PromoTypeFreeNights
	default:
		return PromoTypeOther
	}
}

func (t PromoType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PromoType) UnmarshalText(text []byte) error {
	*t = ParsePromoType(string(text))
	return nil
}

// Date is a calendar day. It accepts both "2006-01-02" and RFC 3339 input.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PromotionRule is one entry of a hotel's promotion catalog.
type PromotionRule struct {
	Code             string    `json:"promoCode"`
	DateFrom         Date      `json:"dateFrom"`
	DateTo           Date      `json:"dateTo"`
	IsActive         bool      `json:"isActive"`
	PromoType        PromoType `json:"promoType"`
	Value            *float64  `json:"value,omitempty"`
	EarlyBookingDays *int      `json:"earlyBookingDays,omitempty"`
}

// ActiveOn reports whether the rule is switched on and day lies within
// [DateFrom, DateTo], both ends inclusive.
func (r PromotionRule) ActiveOn(day Date) bool {
	if !r.IsActive {
		return false
	}
	return !day.Before(r.DateFrom.Time) && !day.After(r.DateTo.Time)
}

// BookingDraft is the part of the guest's booking the promotion engine reads.
type BookingDraft struct {
	CheckIn *Date `json:"checkIn,omitempty"`
	Nights  int   `json:"nights"`
}
