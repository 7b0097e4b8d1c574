package manifest

import "strings"

const typeAllMask = "typeAllMask"

// EventTypeNames are the accessibilityEventTypes flag values, in the order
// they are reported.
var EventTypeNames = []string{
	"typeAllMask",
	"typeAnnouncement",
	"typeAssistReadingContext",
	"typeContextClicked",
	"typeGestureDetectionEnd",
	"typeGestureDetectionStart",
	"typeNotificationStateChanged",
	"typeTouchExplorationGestureEnd",
	"typeTouchExplorationGestureStart",
	"typeTouchInteractionEnd",
	"typeTouchInteractionStart",
	"typeViewAccessibilityFocusCleared",
	"typeViewAccessibilityFocused",
	"typeViewClicked",
	"typeViewFocused",
	"typeViewHoverEnter",
	"typeViewHoverExit",
	"typeViewLongClicked",
	"typeViewScrolled",
	"typeViewSelected",
	"typeViewTextChanged",
	"typeViewTextSelectionChanged",
	"typeViewTextTraversedAtMovementGranularity",
	"typeWindowContentChanged",
	"typeWindowStateChanged",
	"typeWindowsChanged",
}

// EventTypes returns the event types the services listen for, merged over
// all configurations. typeAllMask enables every type. Unknown flag values
// are kept after the known ones.
func EventTypes(configs []ServiceConfig) []string {
	enabled := map[string]bool{}
	var unknown []string

	known := map[string]bool{}
	for _, name := range EventTypeNames {
		known[name] = true
	}

	for _, c := range configs {
		for _, e := range strings.Split(c.EventTypes, "|") {
			e = strings.TrimSpace(e)
			if e == "" || enabled[e] {
				continue
			}

			enabled[e] = true
			if !known[e] {
				unknown = append(unknown, e)
			}
		}
	}

	types := []string{}
	for _, name := range EventTypeNames {
		if enabled[name] || enabled[typeAllMask] {
			types = append(types, name)
		}
	}

	return append(types, unknown...)
}
