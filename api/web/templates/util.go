// Package templates renders the server side board fragments as templ components.
package templates

import (
	"strings"

	"github.com/aouyang1/labboard/schedule"
)

const eventDateLayout = "Mon, Jan 2 · 3:04 PM"

func rowClass(row schedule.Row) string {
	classes := []string{"hours-row"}
	if row.Today {
		classes = append(classes, "today")
	}
	if row.Closed {
		classes = append(classes, "closed")
	}
	return strings.Join(classes, " ")
}

func slotClass(slot schedule.Slot) string {
	if slot.Now {
		return "slot now"
	}
	return "slot"
}

func statusClass(open bool) string {
	if open {
		return "status-pill open"
	}
	return "status-pill closed"
}
