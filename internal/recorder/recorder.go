package recorder

import "time"

// AlertRow is one structure transition written to history.
type AlertRow struct {
	AlertID   string
	Symbol    string
	Category  string
	Previous  string
	Current   string
	Price     float64
	Delivered bool
	At        time.Time
}

// CycleErrorRow records a failed polling cycle and the backoff applied.
type CycleErrorRow struct {
	Symbol            string
	ConsecutiveErrors int
	BackoffSeconds    float64
	Message           string
	At                time.Time
}

// Recorder persists monitoring history for later inspection. All
// implementations must be safe for use from multiple monitor goroutines.
type Recorder interface {
	RecordAlert(row *AlertRow) error
	RecordCycleError(row *CycleErrorRow) error
	Close() error
}
