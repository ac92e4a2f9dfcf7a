package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertEvent records a confirmed structure transition for one instrument.
// It is built only when a definite verdict differs from a previously set
// state, and is consumed exactly once by the dispatcher.
type AlertEvent struct {
	ID       string
	Symbol   string
	Category string
	Previous StructureState
	Current  StructureState
	Price    float64
	Time     time.Time
}

// NewAlertEvent builds an immutable transition event.
func NewAlertEvent(symbol, category string, prev, curr StructureState, price float64, at time.Time) *AlertEvent {
	return &AlertEvent{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Category: category,
		Previous: prev,
		Current:  curr,
		Price:    price,
		Time:     at,
	}
}
