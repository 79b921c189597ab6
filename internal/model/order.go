package model

import (
	"time"
)

type Order struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"orderId"`
	TrackingNumber string     `json:"trackingNumber"`
	Carrier        string     `json:"carrier"`      // empty: detect from tracking number
	LastStatus     Status     `json:"lastStatus"`   // empty: never checked
	LastUpdateAt   *time.Time `json:"lastUpdateAt"` // nil: never checked
	RiskLevel      RiskLevel  `json:"riskLevel"`    // empty: not classified
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewOrder is the body of a create request. An empty carrier asks the
// backend to detect it.
type NewOrder struct {
	OrderID        string `json:"orderId" validate:"required,max=64"`
	TrackingNumber string `json:"trackingNumber" validate:"required,max=64"`
	Carrier        string `json:"carrier" validate:"max=32"`
}

type OrderList struct {
	Orders []Order `json:"orders"`
}

type CheckResult struct {
	Order              Order  `json:"order"`
	RecommendedMessage string `json:"recommendedMessage,omitempty"`
}
