package service

import (
	"fmt"
	"time"

	"orderwarden/internal/model"
)

const (
	day = 24 * time.Hour

	transitAttentionAfter = 3 * day
	transitHighRiskAfter  = 7 * day
	pickupAttentionAfter  = 5 * day
)

// Assessment is the risk verdict for one shipment. Message is a suggested
// note to the buyer and is empty for healthy shipments.
type Assessment struct {
	Level   model.RiskLevel
	Message string
}

func Assess(status model.Status, lastEvent, now time.Time) Assessment {
	idle := now.Sub(lastEvent)
	days := int(idle / day)

	switch status.Normalize() {
	case model.StatusDelivered:
		return Assessment{Level: model.RiskHealthy}
	case model.StatusException:
		return Assessment{
			Level:   model.RiskHigh,
			Message: "The carrier reported a problem with your package. We are looking into it and will update you shortly.",
		}
	case model.StatusDeliveryFailed:
		return Assessment{
			Level:   model.RiskHigh,
			Message: "The carrier could not deliver your package. Please confirm your shipping address so we can arrange another attempt.",
		}
	case model.StatusInTransit, model.StatusOutForDelivery:
		switch {
		case idle > transitHighRiskAfter:
			return Assessment{
				Level:   model.RiskHigh,
				Message: fmt.Sprintf("Your package has not moved for %d days. We have opened an inquiry with the carrier and will keep you posted.", days),
			}
		case idle > transitAttentionAfter:
			return Assessment{
				Level:   model.RiskAttention,
				Message: fmt.Sprintf("Your package is in transit but has not been scanned for %d days. It may arrive a little later than expected.", days),
			}
		}
		return Assessment{Level: model.RiskHealthy}
	case model.StatusPreTransit:
		if idle > pickupAttentionAfter {
			return Assessment{
				Level:   model.RiskAttention,
				Message: fmt.Sprintf("A shipping label was created %d days ago and the carrier has not picked up the package yet.", days),
			}
		}
		return Assessment{Level: model.RiskHealthy}
	default:
		return Assessment{
			Level:   model.RiskAttention,
			Message: "We could not get tracking details for your package yet. We will check again soon.",
		}
	}
}
