package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
)

// ErrUnknownPlan is returned for plan or add-on ids that are not in the
// catalog, or that are used in the wrong slot.
var ErrUnknownPlan = errors.New("unknown plan")

var hundred = decimal.NewFromInt(100)

// LineItem is one priced row of a quote.
type LineItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	AmountCents int64           `json:"amountCents"`
}

// Quote is a priced plan selection. All amounts are monthly.
type Quote struct {
	Plan          Plan            `json:"plan"`
	AddOns        []Plan          `json:"addOns"`
	LineItems     []LineItem      `json:"lineItems"`
	State         string          `json:"state,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	SubtotalCents int64           `json:"subtotalCents"`
	TaxCents      int64           `json:"taxCents"`
	TotalCents    int64           `json:"totalCents"`
	TrialDays     int             `json:"trialDays,omitempty"`
}

// AddOnIDs returns the ids of the quoted add-ons in order.
func (q *Quote) AddOnIDs() []string {
	ids := make([]string, 0, len(q.AddOns))
	for _, a := range q.AddOns {
		ids = append(ids, a.ID)
	}
	return ids
}

// Calculator prices plan selections. It is safe for concurrent use.
type Calculator struct {
	flatRate   decimal.Decimal
	homeRate   decimal.Decimal
	homeStates map[string]bool
	trialDays  int
}

func NewCalculator(cfg config.PricingConfig) *Calculator {
	c := &Calculator{
		flatRate:   decimal.NewFromFloat(cfg.TaxRate),
		homeRate:   decimal.NewFromFloat(cfg.HomeStateTaxRate),
		homeStates: make(map[string]bool, 2),
		trialDays:  cfg.TrialDays,
	}

	home := strings.ToUpper(strings.TrimSpace(cfg.HomeState))
	if home != "" {
		c.homeStates[home] = true
		if name, ok := stateNames[home]; ok {
			c.homeStates[strings.ToUpper(name)] = true
		}
	}

	return c
}

// TrialDays is the trial length given to the trial plan.
func (c *Calculator) TrialDays() int {
	return c.trialDays
}

// TaxRateFor returns the home state rate when state names the home state
// (by code or full name, any case) and the flat rate otherwise.
func (c *Calculator) TaxRateFor(state string) decimal.Decimal {
	if c.IsHomeState(state) {
		return c.homeRate
	}
	return c.flatRate
}

// IsHomeState reports whether state is the agency's home state.
func (c *Calculator) IsHomeState(state string) bool {
	return c.homeStates[strings.ToUpper(strings.TrimSpace(state))]
}

// Quote prices planID plus addOnIDs for a customer in state.
//
// Repeated add-on ids are counted once. Every amount is rounded half-up to
// the cent and the total is the sum of the rounded subtotal and tax.
func (c *Calculator) Quote(planID string, addOnIDs []string, state string) (*Quote, error) {
	plan, ok := Lookup(planID)
	if !ok || !plan.IsCore() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}

	q := &Quote{
		Plan:   plan,
		AddOns: []Plan{},
		State:  strings.TrimSpace(state),
	}
	if plan.Kind == KindTrial {
		q.TrialDays = c.trialDays
	}

	q.LineItems = append(q.LineItems, lineItem(plan))
	subtotal := plan.Price

	seen := make(map[string]bool, len(addOnIDs))
	for _, id := range addOnIDs {
		addOn, ok := Lookup(id)
		if !ok || addOn.Kind != KindAddOn {
			return nil, fmt.Errorf("%w: %q is not an add-on", ErrUnknownPlan, id)
		}
		if seen[addOn.ID] {
			continue
		}
		seen[addOn.ID] = true

		q.AddOns = append(q.AddOns, addOn)
		q.LineItems = append(q.LineItems, lineItem(addOn))
		subtotal = subtotal.Add(addOn.Price)
	}

	q.Subtotal = subtotal.Round(2)
	q.TaxRate = c.TaxRateFor(state)
	q.Tax = q.Subtotal.Mul(q.TaxRate).Round(2)
	q.Total = q.Subtotal.Add(q.Tax)

	q.SubtotalCents = toCents(q.Subtotal)
	q.TaxCents = toCents(q.Tax)
	q.TotalCents = toCents(q.Total)

	return q, nil
}

func lineItem(p Plan) LineItem {
	return LineItem{
		ID:          p.ID,
		Name:        p.Name,
		Kind:        p.Kind,
		Amount:      p.Price,
		AmountCents: toCents(p.Price),
	}
}

// toCents expects an amount already rounded to two places.
func toCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}
