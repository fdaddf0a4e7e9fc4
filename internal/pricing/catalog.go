// Package pricing holds the plan catalog and the quote calculator used by
// the pricing page and the signup flow.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind distinguishes what a catalog entry can be bought as.
type Kind string

const (
	KindTrial Kind = "trial"
	KindCore  Kind = "core"
	KindAddOn Kind = "addon"
)

// TrialPlanID is the free plan that needs no payment method.
const TrialPlanID = "trial"

// Plan is a catalog entry. LookupKey is the Stripe price lookup key the
// billing client resolves to a price id.
type Plan struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        Kind            `json:"kind"`
	Price       decimal.Decimal `json:"price"`
	LookupKey   string          `json:"lookupKey"`
	Description string          `json:"description"`
	Features    []string        `json:"features,omitempty"`
}

// IsCore reports whether p can be the base plan of a subscription.
func (p Plan) IsCore() bool {
	return p.Kind == KindCore || p.Kind == KindTrial
}

var catalog = []Plan{
	{
		ID:          TrialPlanID,
		Name:        "Free Trial",
		Kind:        KindTrial,
		Price:       decimal.Zero,
		LookupKey:   "riva_trial_monthly",
		Description: "Try the starter toolkit before you commit.",
		Features:    []string{"Website audit", "Google Business Profile setup", "Monthly report"},
	},
	{
		ID:          "starter",
		Name:        "Starter",
		Kind:        KindCore,
		Price:       decimal.NewFromInt(99),
		LookupKey:   "riva_starter_monthly",
		Description: "Local visibility for new businesses.",
		Features:    []string{"Local SEO basics", "Google Business Profile management", "Monthly report"},
	},
	{
		ID:          "growth",
		Name:        "Growth",
		Kind:        KindCore,
		Price:       decimal.NewFromInt(199),
		LookupKey:   "riva_growth_monthly",
		Description: "Steady lead flow for established shops.",
		Features:    []string{"Everything in Starter", "Two landing pages", "Review generation", "Bi-weekly check-ins"},
	},
	{
		ID:          "premium",
		Name:        "Premium",
		Kind:        KindCore,
		Price:       decimal.NewFromInt(399),
		LookupKey:   "riva_premium_monthly",
		Description: "A full-service marketing team.",
		Features:    []string{"Everything in Growth", "Conversion tracking", "Weekly strategy calls", "Priority support"},
	},
	{
		ID:          "seo-boost",
		Name:        "SEO Boost",
		Kind:        KindAddOn,
		Price:       decimal.NewFromInt(49),
		LookupKey:   "riva_addon_seo_boost_monthly",
		Description: "Extra keyword targeting and on-page fixes.",
	},
	{
		ID:          "email-marketing",
		Name:        "Email Marketing",
		Kind:        KindAddOn,
		Price:       decimal.NewFromInt(49),
		LookupKey:   "riva_addon_email_marketing_monthly",
		Description: "Monthly newsletter and list management.",
	},
	{
		ID:          "social-media",
		Name:        "Social Media",
		Kind:        KindAddOn,
		Price:       decimal.NewFromInt(79),
		LookupKey:   "riva_addon_social_media_monthly",
		Description: "Twelve posts a month across two networks.",
	},
	{
		ID:          "content-writing",
		Name:        "Content Writing",
		Kind:        KindAddOn,
		Price:       decimal.NewFromInt(99),
		LookupKey:   "riva_addon_content_writing_monthly",
		Description: "Two long-form blog posts a month.",
	},
	{
		ID:          "paid-ads",
		Name:        "Paid Ads Management",
		Kind:        KindAddOn,
		Price:       decimal.NewFromInt(149),
		LookupKey:   "riva_addon_paid_ads_monthly",
		Description: "Google and Meta campaign management. Ad spend billed separately.",
	},
}

var catalogByID = func() map[string]Plan {
	m := make(map[string]Plan, len(catalog))
	for _, p := range catalog {
		m[p.ID] = p
	}
	return m
}()

// Lookup finds a catalog entry by id, ignoring case and surrounding space.
func Lookup(id string) (Plan, bool) {
	p, ok := catalogByID[strings.ToLower(strings.TrimSpace(id))]
	return p, ok
}

var catalogByLookupKey = func() map[string]Plan {
	m := make(map[string]Plan, len(catalog))
	for _, p := range catalog {
		m[p.LookupKey] = p
	}
	return m
}()

// LookupByKey finds a catalog entry by its Stripe price lookup key.
func LookupByKey(lookupKey string) (Plan, bool) {
	p, ok := catalogByLookupKey[lookupKey]
	return p, ok
}

// CorePlans returns the plans a subscription can be based on, cheapest first.
func CorePlans() []Plan {
	return filter(func(p Plan) bool { return p.IsCore() })
}

// AddOns returns the optional extras.
func AddOns() []Plan {
	return filter(func(p Plan) bool { return p.Kind == KindAddOn })
}

func filter(keep func(Plan) bool) []Plan {
	var out []Plan
	for _, p := range catalog {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
