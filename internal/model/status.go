package model

// Status is the normalized delivery status of a tracked shipment. Values
// outside the known set are kept as received and presented as unknown.
type Status string

const (
	StatusPreTransit     Status = "pre_transit"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusException      Status = "exception"
	StatusDeliveryFailed Status = "delivery_failed"
	StatusUnknown        Status = "unknown"
)

var Statuses = []Status{
	StatusPreTransit,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusException,
	StatusDeliveryFailed,
}

// Known reports whether s is one of the enumerated statuses.
func (s Status) Known() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Normalize maps anything outside the enumeration, including the empty
// status, to StatusUnknown.
func (s Status) Normalize() Status {
	if s.Known() {
		return s
	}
	return StatusUnknown
}

func (s Status) Label() string {
	switch s {
	case StatusPreTransit:
		return "Pre-transit"
	case StatusInTransit:
		return "In transit"
	case StatusOutForDelivery:
		return "Out for delivery"
	case StatusDelivered:
		return "Delivered"
	case StatusException:
		return "Exception"
	case StatusDeliveryFailed:
		return "Delivery failed"
	default:
		return "Unknown"
	}
}

// Terminal statuses are not re-polled by the tracking worker.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusDeliveryFailed
}
