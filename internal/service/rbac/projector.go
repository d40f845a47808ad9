package rbac

import (
	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/pkg/logger"
)

// LoginPath is where a denied projection sends the user.
const LoginPath = "/login"

// Projection is the show/hide/enable decision set for one role.
// Visible has an entry for every region; Enabled has one for every modal tab and
// says whether the form controls inside that tab accept input.
type Projection struct {
	Role       string          `json:"role"`
	Known      bool            `json:"known"`
	Privileged bool            `json:"privileged"`
	Visible    map[Region]bool `json:"visible"`
	Enabled    map[Region]bool `json:"enabled"`
	Redirect   string          `json:"redirect,omitempty"`
}

// IsVisible reports whether region r is shown. Unknown regions are hidden.
func (p Projection) IsVisible(r Region) bool { return p.Visible[r] }

// IsEnabled reports whether the controls inside tab r accept input.
func (p Projection) IsEnabled(r Region) bool { return p.Enabled[r] }

// Hidden returns the hidden regions in display order.
func (p Projection) Hidden() []Region {
	var out []Region
	for _, r := range allRegions {
		if !p.Visible[r] {
			out = append(out, r)
		}
	}
	return out
}

// Isolate returns a copy in which tab is the only visible modal tab. It never
// reveals a tab the receiver hides; ok is false in that case and the copy is unchanged.
// The receiver is not modified, so resetting the modal is just projecting again.
func (p Projection) Isolate(tab Region) (Projection, bool) {
	out := p.clone()
	if tab.Group() != GroupTab || !p.Visible[tab] {
		return out, false
	}
	for _, t := range Tabs() {
		out.Visible[t] = t == tab
		if !out.Privileged {
			out.Enabled[t] = t == tab
		}
	}
	return out, true
}

func (p Projection) clone() Projection {
	out := p
	out.Visible = make(map[Region]bool, len(p.Visible))
	for k, v := range p.Visible {
		out.Visible[k] = v
	}
	out.Enabled = make(map[Region]bool, len(p.Enabled))
	for k, v := range p.Enabled {
		out.Enabled[k] = v
	}
	return out
}

type Projector struct {
	log *logger.Logger
}

func NewProjector(log *logger.Logger) *Projector {
	if log == nil {
		log = logger.Nop()
	}
	return &Projector{log: log}
}

// Project computes the projection for role. It never fails: a role without a
// table entry gets the deny-all projection with a redirect to the login flow.
func (p *Projector) Project(role model.Role) Projection {
	key := role.Key()
	hidden, ok := hiddenRegions[key]
	if !ok {
		p.log.Warn("no projection for role, denying all regions", "role", role.String())
		return denyAll(role)
	}

	proj := Projection{
		Role:       key,
		Known:      true,
		Privileged: key == privilegedRole,
		Visible:    make(map[Region]bool, len(allRegions)),
		Enabled:    make(map[Region]bool),
	}
	for _, r := range allRegions {
		proj.Visible[r] = true
	}
	for _, r := range hidden {
		proj.Visible[r] = false
	}
	for _, t := range Tabs() {
		proj.Enabled[t] = proj.Privileged || proj.Visible[t]
	}
	return proj
}

// ProjectRaw parses the raw session values and projects them. Malformed values fail closed.
func (p *Projector) ProjectRaw(userType, roleLevel string) Projection {
	role, _ := model.ParseRole(userType, roleLevel)
	return p.Project(role)
}

func denyAll(role model.Role) Projection {
	proj := Projection{
		Role:     role.String(),
		Visible:  make(map[Region]bool, len(allRegions)),
		Enabled:  make(map[Region]bool),
		Redirect: LoginPath,
	}
	for _, r := range allRegions {
		proj.Visible[r] = false
	}
	for _, t := range Tabs() {
		proj.Enabled[t] = false
	}
	return proj
}
