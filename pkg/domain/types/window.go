package types

import (
	"fmt"
	"strings"
)

// Window is a nested lookback range used to scope a trend chart
type Window string

const (
	Window1D Window = "1D"
	Window1M Window = "1M"
	Window3M Window = "3M"
	Window6M Window = "6M"
	Window1Y Window = "1Y"
)

// DefaultWindow is the window a detail view opens on
const DefaultWindow = Window1M

// AllWindows returns every window, shortest first
func AllWindows() []Window {
	return []Window{Window1D, Window1M, Window3M, Window6M, Window1Y}
}

// MaxAgeDays is the inclusive upper bound on a point's age for the window
func (w Window) MaxAgeDays() float64 {
	switch w {
	case Window1D:
		return 1
	case Window1M:
		return 30
	case Window3M:
		return 90
	case Window6M:
		return 180
	case Window1Y:
		return 365
	default:
		return 0
	}
}

// LabelLayout is the time.Format layout for point labels in the window:
// hour:minute for 1D, day+month for 1M/3M, month+year for 6M/1Y.
func (w Window) LabelLayout() string {
	switch w {
	case Window1D:
		return "15:04"
	case Window1M, Window3M:
		return "02 Jan"
	default:
		return "Jan 06"
	}
}

// IsValid checks if the window is known
func (w Window) IsValid() bool {
	return w.MaxAgeDays() > 0
}

func (w Window) String() string {
	return string(w)
}

// ParseWindow parses a window id, case-insensitively
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToUpper(s))
	if !w.IsValid() {
		return "", fmt.Errorf("invalid window: %s", s)
	}
	return w, nil
}
