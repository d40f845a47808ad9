package rbac

import "strings"

// Region is the stable key of an addressable part of the dashboard UI.
// The front end tags elements with data-region="<key>" and never matches on text.
type Region string

// Group is the kind of UI element a region is.
type Group string

const (
	GroupNav    Group = "nav"
	GroupSubnav Group = "subnav"
	GroupButton Group = "button"
	GroupTab    Group = "tab"
	GroupFilter Group = "filter"
)

const (
	NavDashboard    Region = "nav.dashboard"
	NavAppointments Region = "nav.appointments"
	NavCalendar     Region = "nav.calendar"
	NavPatients     Region = "nav.patients"
	NavDoctors      Region = "nav.doctors"
	NavStaff        Region = "nav.staff"
	NavAddServices  Region = "nav.add_services"
	NavReports      Region = "nav.reports"
	NavSettings     Region = "nav.settings"

	SubnavBooked    Region = "subnav.booked"
	SubnavArrived   Region = "subnav.arrived"
	SubnavOnGoing   Region = "subnav.on_going"
	SubnavReviewed  Region = "subnav.reviewed"
	SubnavCanceled  Region = "subnav.canceled"
	SubnavEmergency Region = "subnav.emergency"

	ButtonNewAppointment Region = "button.new_appointment"
	ButtonTeleConsults   Region = "button.tele_consults"
	ButtonCancel         Region = "button.cancel_appointment"
	ButtonReschedule     Region = "button.reschedule_appointment"
	ButtonAddPatient     Region = "button.add_patient"
	ButtonAddStaff       Region = "button.add_staff"
	ButtonExport         Region = "button.export"
	ButtonVitals         Region = "button.vitals"

	TabAddService    Region = "tab.add_service"
	TabAddDoctor     Region = "tab.add_doctor"
	TabAddStaff      Region = "tab.add_staff"
	TabAddDepartment Region = "tab.add_department"
	TabPricing       Region = "tab.pricing"

	FilterDoctor Region = "filter.doctor"
	FilterStatus Region = "filter.status"
	FilterDate   Region = "filter.date"
)

var allRegions = []Region{
	NavDashboard, NavAppointments, NavCalendar, NavPatients, NavDoctors, NavStaff, NavAddServices, NavReports, NavSettings,
	SubnavBooked, SubnavArrived, SubnavOnGoing, SubnavReviewed, SubnavCanceled, SubnavEmergency,
	ButtonNewAppointment, ButtonTeleConsults, ButtonCancel, ButtonReschedule, ButtonAddPatient, ButtonAddStaff, ButtonExport, ButtonVitals,
	TabAddService, TabAddDoctor, TabAddStaff, TabAddDepartment, TabPricing,
	FilterDoctor, FilterStatus, FilterDate,
}

// AllRegions returns every region key in display order.
func AllRegions() []Region {
	out := make([]Region, len(allRegions))
	copy(out, allRegions)
	return out
}

// Tabs returns the modal tab regions.
func Tabs() []Region {
	var tabs []Region
	for _, r := range allRegions {
		if r.Group() == GroupTab {
			tabs = append(tabs, r)
		}
	}
	return tabs
}

func (r Region) Group() Group {
	g, _, _ := strings.Cut(string(r), ".")
	return Group(g)
}

// Known reports whether r is one of the declared regions.
func (r Region) Known() bool {
	for _, k := range allRegions {
		if k == r {
			return true
		}
	}
	return false
}
