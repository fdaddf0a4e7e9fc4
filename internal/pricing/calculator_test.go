package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
)

func newTestCalculator() *Calculator {
	return NewCalculator(config.PricingConfig{
		TaxRate:          0.05,
		HomeState:        "MI",
		HomeStateTaxRate: 0.06,
		TrialDays:        14,
	})
}

func TestQuoteMichiganStarterWithAddOn(t *testing.T) {
	q, err := newTestCalculator().Quote("starter", []string{"seo-boost"}, "MI")
	require.NoError(t, err)

	assert.Equal(t, "148.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "0.06", q.TaxRate.String())
	assert.Equal(t, "8.88", q.Tax.StringFixed(2))
	assert.Equal(t, "156.88", q.Total.StringFixed(2))

	assert.Equal(t, int64(14800), q.SubtotalCents)
	assert.Equal(t, int64(888), q.TaxCents)
	assert.Equal(t, int64(15688), q.TotalCents)

	require.Len(t, q.LineItems, 2)
	assert.Equal(t, "starter", q.LineItems[0].ID)
	assert.Equal(t, int64(4900), q.LineItems[1].AmountCents)
}

func TestQuoteTaxRateByState(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		state string
		rate  string
	}{
		{"MI", "0.06"},
		{"mi", "0.06"},
		{"Michigan", "0.06"},
		{" michigan ", "0.06"},
		{"OH", "0.05"},
		{"", "0.05"},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			assert.True(t, calc.TaxRateFor(tt.state).Equal(decimal.RequireFromString(tt.rate)))
		})
	}
}

func TestIsHomeState(t *testing.T) {
	calc := newTestCalculator()
	assert.True(t, calc.IsHomeState("michigan"))
	assert.True(t, calc.IsHomeState("MI"))
	assert.False(t, calc.IsHomeState("MN"))
}

func TestQuoteOutOfStateUsesFlatRate(t *testing.T) {
	q, err := newTestCalculator().Quote("growth", []string{"social-media", "paid-ads"}, "OH")
	require.NoError(t, err)

	// 199 + 79 + 149 = 427, 5% = 21.35
	assert.Equal(t, int64(42700), q.SubtotalCents)
	assert.Equal(t, int64(2135), q.TaxCents)
	assert.Equal(t, int64(44835), q.TotalCents)
}

func TestQuoteRoundsHalfUp(t *testing.T) {
	calc := NewCalculator(config.PricingConfig{TaxRate: 0.065, HomeState: "MI", HomeStateTaxRate: 0.06})

	// 99 * 0.065 = 6.435
	q, err := calc.Quote("starter", nil, "CA")
	require.NoError(t, err)
	assert.Equal(t, "6.44", q.Tax.StringFixed(2))
	assert.Equal(t, int64(10544), q.TotalCents)
}

func TestQuoteDeduplicatesAddOns(t *testing.T) {
	q, err := newTestCalculator().Quote("starter", []string{"seo-boost", "SEO-BOOST", "seo-boost"}, "MI")
	require.NoError(t, err)

	assert.Equal(t, []string{"seo-boost"}, q.AddOnIDs())
	assert.Equal(t, int64(14800), q.SubtotalCents)
}

func TestQuoteTrialPlan(t *testing.T) {
	q, err := newTestCalculator().Quote("trial", nil, "MI")
	require.NoError(t, err)

	assert.True(t, q.Total.IsZero())
	assert.Equal(t, 14, q.TrialDays)
	assert.Empty(t, q.AddOns)
}

func TestQuoteRejectsUnknownIDs(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name   string
		plan   string
		addOns []string
	}{
		{"unknown plan", "enterprise", nil},
		{"empty plan", "", nil},
		{"add-on as plan", "seo-boost", nil},
		{"unknown add-on", "starter", []string{"billboards"}},
		{"core plan as add-on", "starter", []string{"growth"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := calc.Quote(tt.plan, tt.addOns, "MI")
			assert.Nil(t, q)
			assert.True(t, errors.Is(err, ErrUnknownPlan))
		})
	}
}

func TestCatalog(t *testing.T) {
	core := CorePlans()
	require.Len(t, core, 4)
	assert.Equal(t, TrialPlanID, core[0].ID)

	for _, a := range AddOns() {
		assert.Equal(t, KindAddOn, a.Kind)
		assert.NotEmpty(t, a.LookupKey)
	}

	p, ok := Lookup(" Premium ")
	require.True(t, ok)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(399)))
}

func TestLookupByKey(t *testing.T) {
	p, ok := LookupByKey("riva_addon_paid_ads_monthly")
	require.True(t, ok)
	assert.Equal(t, "paid-ads", p.ID)

	_, ok = LookupByKey("unknown")
	assert.False(t, ok)
}
