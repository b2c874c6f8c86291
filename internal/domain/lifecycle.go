package domain

import "time"

const (
	// CancellationWindow is how long after creation the owner may still
	// cancel an order.
	CancellationWindow = 5 * time.Hour

	// FreeShippingThreshold is the subtotal (in rupees) above which the
	// shipping fee is waived.
	FreeShippingThreshold = 15000.0

	// ShippingFee applies to every order at or below the threshold.
	ShippingFee = 500.0
)

// IsCancellable reports whether the owner may still cancel an order
// created at createdAt with the given status, as of now. Terminal
// statuses are never cancellable; otherwise the order must be within
// the cancellation window.
func IsCancellable(createdAt time.Time, status OrderStatus, now time.Time) bool {
	if status.IsTerminal() {
		return false
	}
	return now.Sub(createdAt) <= CancellationWindow
}

// Badge is the display mapping for an order status: a semantic icon
// name and a visual severity class the client renders directly.
type Badge struct {
	Icon       string `json:"icon"`
	ColorClass string `json:"color_class"`
}

// StatusDisplay maps a status to its badge. Unknown values get a
// neutral badge rather than an error.
func StatusDisplay(status OrderStatus) Badge {
	switch status {
	case OrderStatusPending:
		return Badge{Icon: "clock", ColorClass: "warning"}
	case OrderStatusConfirmed:
		return Badge{Icon: "check-circle", ColorClass: "info"}
	case OrderStatusShipped:
		return Badge{Icon: "truck", ColorClass: "progress"}
	case OrderStatusDelivered:
		return Badge{Icon: "package-check", ColorClass: "success"}
	case OrderStatusCancelled:
		return Badge{Icon: "x-circle", ColorClass: "danger"}
	default:
		return Badge{Icon: "help-circle", ColorClass: "neutral"}
	}
}

// ComputeShipping returns the shipping fee for a subtotal. Strictly
// above the threshold ships free; the threshold itself still pays.
func ComputeShipping(subtotal float64) float64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return ShippingFee
}

// ComputeSubtotal sums price times quantity over the line items.
func ComputeSubtotal(items []OrderItem) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	return subtotal
}

// ComputeTotal is the order total: subtotal plus shipping.
func ComputeTotal(items []OrderItem) float64 {
	subtotal := ComputeSubtotal(items)
	return subtotal + ComputeShipping(subtotal)
}
