package rbac

import "github.com/jwalitptl/hospital-dashboard/internal/model"

// privilegedRole has every form control enabled and may isolate any modal tab.
const privilegedRole = "doctor-senior"

// hiddenRegions maps a role key to the regions that role does not see.
// Everything not listed is visible. A role missing from this table is denied everything.
var hiddenRegions = map[string][]Region{
	"admin-senior": {
		SubnavOnGoing, SubnavReviewed, ButtonTeleConsults, ButtonVitals,
	},
	"admin-medium": {
		SubnavOnGoing, SubnavReviewed, ButtonTeleConsults, ButtonVitals,
		NavSettings, TabPricing,
	},
	"doctor-senior": {},
	"doctor-medium": {
		NavStaff, NavAddServices, NavSettings, ButtonAddStaff,
		TabAddService, TabAddStaff, TabAddDepartment, TabPricing,
	},
	"doctor-basic": {
		NavStaff, NavAddServices, NavReports, NavSettings, NavDoctors,
		ButtonAddStaff, ButtonExport, ButtonReschedule,
		TabAddService, TabAddDoctor, TabAddStaff, TabAddDepartment, TabPricing,
	},
	"nurse-senior": {
		NavAddServices, NavSettings, NavStaff, ButtonTeleConsults, ButtonAddStaff,
		TabAddService, TabAddDoctor, TabAddStaff, TabAddDepartment, TabPricing,
	},
	"nurse-medium": {
		NavAddServices, NavSettings, NavStaff, NavReports, ButtonTeleConsults, ButtonAddStaff, ButtonExport,
		TabAddService, TabAddDoctor, TabAddStaff, TabAddDepartment, TabPricing,
	},
	"nurse-basic": {
		NavAddServices, NavSettings, NavStaff, NavReports, NavDoctors, SubnavReviewed,
		ButtonTeleConsults, ButtonAddStaff, ButtonExport, ButtonCancel, ButtonReschedule,
		TabAddService, TabAddDoctor, TabAddStaff, TabAddDepartment, TabPricing,
	},
	"receptionist-senior": {
		NavAddServices, NavSettings, SubnavOnGoing, SubnavReviewed, ButtonTeleConsults, ButtonVitals,
		TabAddService, TabAddDepartment, TabPricing,
	},
	"receptionist-medium": {
		NavAddServices, NavSettings, NavStaff, NavReports, SubnavOnGoing, SubnavReviewed,
		ButtonTeleConsults, ButtonVitals, ButtonAddStaff, ButtonExport,
		TabAddService, TabAddStaff, TabAddDepartment, TabPricing,
	},
	"receptionist-basic": {
		NavAddServices, NavSettings, NavStaff, NavReports, NavDoctors, SubnavOnGoing, SubnavReviewed,
		ButtonTeleConsults, ButtonVitals, ButtonAddStaff, ButtonExport, ButtonReschedule,
		TabAddService, TabAddDoctor, TabAddStaff, TabAddDepartment, TabPricing,
	},
}

// KnownRoles returns the roles that have a table entry.
func KnownRoles() []model.Role {
	var roles []model.Role
	for key := range hiddenRegions {
		if r, ok := model.ParseRoleKey(key); ok {
			roles = append(roles, r)
		}
	}
	return roles
}
