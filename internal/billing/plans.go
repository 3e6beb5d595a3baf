package billing

import (
	"lincognito/internal/config"
	"lincognito/internal/domain/user"
)

// Plan is one pricing tier. PriceID is the Stripe Price and is never sent to browsers.
type Plan struct {
	ID           user.Plan `json:"id"`
	Name         string    `json:"name"`
	PriceDisplay string    `json:"price"`
	Interval     string    `json:"interval"`
	Description  string    `json:"description"`
	Features     []string  `json:"features"`
	Highlighted  bool      `json:"highlighted"`
	PriceID      string    `json:"-"`
}

// Purchasable reports whether checkout can be started for the plan.
func (p Plan) Purchasable() bool {
	return p.PriceID != ""
}

type Catalog struct {
	plans []Plan
}

func NewCatalog(cfg config.StripeConfig) *Catalog {
	return &Catalog{plans: []Plan{
		{
			ID:           user.PlanFree,
			Name:         "Free",
			PriceDisplay: "$0",
			Interval:     "month",
			Description:  "For ghostwriters testing the waters.",
			Features: []string{
				"Up to 2 clients",
				"Unlimited drafts",
				"Post templates",
			},
		},
		{
			ID:           user.PlanPro,
			Name:         "Pro",
			PriceDisplay: "$29",
			Interval:     "month",
			Description:  "For full-time ghostwriters.",
			Features: []string{
				"Unlimited clients",
				"Scheduling and publishing workflow",
				"Engagement tracking",
				"Weekly performance report",
			},
			Highlighted: true,
			PriceID:     cfg.PricePro,
		},
		{
			ID:           user.PlanAgency,
			Name:         "Agency",
			PriceDisplay: "$99",
			Interval:     "month",
			Description:  "For teams writing for many voices.",
			Features: []string{
				"Everything in Pro",
				"Agency workspace with team roles",
				"Shared clients and templates",
				"Priority support",
			},
			PriceID: cfg.PriceAgency,
		},
	}}
}

func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

func (c *Catalog) Find(id user.Plan) (Plan, bool) {
	for _, p := range c.plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// ByPriceID maps a Stripe price back to the plan it sells.
func (c *Catalog) ByPriceID(priceID string) (Plan, bool) {
	if priceID == "" {
		return Plan{}, false
	}
	for _, p := range c.plans {
		if p.PriceID == priceID {
			return p, true
		}
	}
	return Plan{}, false
}
