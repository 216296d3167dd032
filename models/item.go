package models

// Item is one kind of lab equipment tracked by quantity, not by serial.
// Invariant: 0 <= AvailableQuantity <= TotalQuantity, and the difference
// equals the sum of quantities currently out on loan.
type Item struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	TotalQuantity     int    `json:"totalQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
}
