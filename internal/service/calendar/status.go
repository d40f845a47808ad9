package calendar

import "github.com/jwalitptl/hospital-dashboard/internal/model"

const unknownStatusClass = "status-unknown"

// StatusClass maps a status to its CSS class: "On Going" -> "status-on-going".
// Missing or unrecognized statuses get "status-unknown".
func StatusClass(status *model.AppointmentStatus) string {
	if status == nil || !status.Valid() {
		return unknownStatusClass
	}
	return "status-" + string(status.Normalize())
}
