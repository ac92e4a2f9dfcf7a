package notifier

import (
	"fmt"
	"strings"
	"time"

	"StructureWatch/internal/model"
)

// Embed colors per regime direction.
const (
	colorBullish = 0x2ECC71
	colorBearish = 0xE74C3C
	colorNeutral = 0x3498DB
)

// FormatAlert renders a structure transition into the channel-agnostic
// message shape.
func FormatAlert(event *model.AlertEvent, loc *time.Location) Message {
	var b strings.Builder
	b.WriteString("Market Structure Change Detected\n\n")
	fmt.Fprintf(&b, "Asset: %s (%s)\n", event.Symbol, event.Category)
	fmt.Fprintf(&b, "Structure Change: %s → %s\n", event.Previous, event.Current)
	fmt.Fprintf(&b, "Current Price: $%.2f\n", event.Price)
	fmt.Fprintf(&b, "Time: %s", event.Time.In(loc).Format("2006-01-02 15:04:05 MST"))

	color := colorNeutral
	switch event.Current {
	case model.StructureUptrend:
		color = colorBullish
	case model.StructureDowntrend:
		color = colorBearish
	}

	return Message{
		Title:     "Market Structure Change Alert",
		Body:      b.String(),
		Color:     color,
		Timestamp: event.Time,
		Fields: map[string]string{
			"symbol":   event.Symbol,
			"category": event.Category,
			"previous": event.Previous.String(),
			"current":  event.Current.String(),
		},
	}
}
