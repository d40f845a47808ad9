package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
)

func mustRole(t *testing.T, key string) model.Role {
	t.Helper()
	role, ok := model.ParseRoleKey(key)
	require.True(t, ok, "bad role key %q", key)
	return role
}

func TestProjectIsDeterministic(t *testing.T) {
	p := rbac.NewProjector(nil)
	for _, role := range rbac.KnownRoles() {
		first := p.Project(role)
		second := p.Project(role)
		assert.Equal(t, first, second, role.Key())
		assert.True(t, first.Known)
		assert.Empty(t, first.Redirect)
		assert.Len(t, first.Visible, len(rbac.AllRegions()))
	}
}

func TestProjectUnknownRoleFailsClosed(t *testing.T) {
	p := rbac.NewProjector(nil)

	cases := map[string]rbac.Projection{
		"absent from table": p.Project(mustRole(t, "admin-basic")),
		"zero role":         p.Project(model.Role{}),
		"malformed raw":     p.ProjectRaw("doctor", "grand"),
		"empty raw":         p.ProjectRaw("", ""),
	}
	for name, proj := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, proj.Known)
			assert.Equal(t, rbac.LoginPath, proj.Redirect)
			for _, r := range rbac.AllRegions() {
				assert.False(t, proj.IsVisible(r), r)
			}
			for _, tab := range rbac.Tabs() {
				assert.False(t, proj.IsEnabled(tab), tab)
			}
		})
	}
}

func TestProjectRawNormalizesCase(t *testing.T) {
	p := rbac.NewProjector(nil)
	proj := p.ProjectRaw("Doctor", "Basic")
	assert.True(t, proj.Known)
	assert.Equal(t, "doctor-basic", proj.Role)
	assert.False(t, proj.IsVisible(rbac.NavAddServices))
	assert.True(t, proj.IsVisible(rbac.NavCalendar))
}

func TestPrivilegedRoleSeesAndEnablesEverything(t *testing.T) {
	proj := rbac.NewProjector(nil).Project(mustRole(t, "doctor-senior"))
	assert.True(t, proj.Privileged)
	assert.Empty(t, proj.Hidden())
	for _, tab := range rbac.Tabs() {
		assert.True(t, proj.IsEnabled(tab), tab)
	}
}

func TestNonPrivilegedHiddenTabsAreDisabled(t *testing.T) {
	proj := rbac.NewProjector(nil).Project(mustRole(t, "doctor-medium"))
	assert.False(t, proj.Privileged)
	assert.False(t, proj.IsVisible(rbac.TabAddService))
	assert.False(t, proj.IsEnabled(rbac.TabAddService))
	assert.True(t, proj.IsVisible(rbac.TabAddDoctor))
	assert.True(t, proj.IsEnabled(rbac.TabAddDoctor))
}

func TestIsolateThenResetRestoresBaseline(t *testing.T) {
	p := rbac.NewProjector(nil)
	role := mustRole(t, "doctor-senior")
	baseline := p.Project(role)

	isolated, ok := baseline.Isolate(rbac.TabAddService)
	require.True(t, ok)
	for _, tab := range rbac.Tabs() {
		assert.Equal(t, tab == rbac.TabAddService, isolated.IsVisible(tab), tab)
		assert.True(t, isolated.IsEnabled(tab), "privileged controls stay enabled: %s", tab)
	}

	// the receiver and the table are untouched
	assert.Empty(t, baseline.Hidden())
	assert.Equal(t, baseline, p.Project(role))
}

func TestIsolateNeverRevealsHiddenTab(t *testing.T) {
	proj := rbac.NewProjector(nil).Project(mustRole(t, "receptionist-basic"))

	out, ok := proj.Isolate(rbac.TabAddService)
	assert.False(t, ok)
	assert.False(t, out.IsVisible(rbac.TabAddService))

	_, ok = proj.Isolate(rbac.NavCalendar)
	assert.False(t, ok, "only modal tabs can be isolated")
}

func TestRegionGroups(t *testing.T) {
	assert.Equal(t, rbac.GroupTab, rbac.TabPricing.Group())
	assert.Equal(t, rbac.GroupSubnav, rbac.SubnavReviewed.Group())
	assert.True(t, rbac.ButtonTeleConsults.Known())
	assert.False(t, rbac.Region("nav.unknown").Known())
	assert.Len(t, rbac.Tabs(), 5)
}
