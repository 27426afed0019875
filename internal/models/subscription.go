package models

import "time"

// SubscriptionStatus is the status of a subscription
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Plan is an entry of the subscription catalog
type Plan struct {
	Name         string `json:"name"`
	DurationDays int    `json:"durationDays"`
	PriceDZD     int    `json:"priceDZD"`
}

var plans = []Plan{
	{Name: "monthly", DurationDays: 30, PriceDZD: 1500},
	{Name: "quarterly", DurationDays: 90, PriceDZD: 4000},
	{Name: "yearly", DurationDays: 365, PriceDZD: 14000},
}

// Plans returns the subscription catalog
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByName looks up a plan of the catalog
func PlanByName(name string) (Plan, bool) {
	for _, p := range plans {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}

// Subscription represents a user's access period
type Subscription struct {
	ID        int                `json:"id"`
	UserID    int                `json:"userId"`
	UserName  string             `json:"userName,omitempty"`
	PlanName  string             `json:"planName"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
	Status    SubscriptionStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CheckoutRequest represents a request to start a subscription
type CheckoutRequest struct {
	PlanName string `json:"planName" validate:"required,oneof=monthly quarterly yearly" example:"monthly"`
}
