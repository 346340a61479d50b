package obs

import "expvar"

// Counters published on /debug/vars.
var (
	OrdersPlaced        = expvar.NewInt("orders_placed")
	OrdersRejectedStock = expvar.NewInt("orders_rejected_stock")
	CartUpdates         = expvar.NewInt("cart_updates")
	ContactMessages     = expvar.NewInt("contact_messages")
	NotificationsSent   = expvar.NewInt("notifications_sent")
	NotificationsFailed = expvar.NewInt("notifications_failed")
)

// Snapshot returns the current counter values keyed by their published name.
func Snapshot() map[string]int64 {
	return map[string]int64{
		"orders_placed":         OrdersPlaced.Value(),
		"orders_rejected_stock": OrdersRejectedStock.Value(),
		"cart_updates":          CartUpdates.Value(),
		"contact_messages":      ContactMessages.Value(),
		"notifications_sent":    NotificationsSent.Value(),
		"notifications_failed":  NotificationsFailed.Value(),
	}
}
