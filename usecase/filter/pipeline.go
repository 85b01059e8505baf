package filter

import (
	"context"
	"slices"

	"github.com/coderops/nightshift/domain/model"
	"github.com/coderops/nightshift/internal/logging"
)

// Listings is the snapshot slice the pipeline resolves memberships against.
type Listings struct {
	Users         []*model.User
	Organizations []*model.Organization
	Groups        []*model.Group
	Templates     []*model.Template
}

// membership is the resolved organization and group names of one owner.
type membership struct {
	orgs   map[string]bool
	groups map[string]bool
}

// Pipeline applies a Spec to a workspace listing. The membership cache is
// written once while filtering and read-only afterwards; build a fresh
// Pipeline per run.
type Pipeline struct {
	usersByName  map[string]*model.User
	orgNameByID  map[string]string
	tmplNameByID map[string]string
	groups       []*model.Group
	known        knownValues
	memberships  map[string]*membership // by user ID
}

// knownValues holds every referenceable value per dimension, used to fail
// closed on typos and stale IDs.
type knownValues struct {
	orgs      map[string]bool
	groups    map[string]bool
	users     map[string]bool
	templates map[string]bool
}

// New indexes the listings for repeated lookups.
func New(l Listings) *Pipeline {
	p := &Pipeline{
		usersByName:  make(map[string]*model.User, len(l.Users)),
		orgNameByID:  make(map[string]string, len(l.Organizations)),
		tmplNameByID: make(map[string]string, len(l.Templates)),
		groups:       l.Groups,
		memberships:  make(map[string]*membership),
		known: knownValues{
			orgs:      make(map[string]bool, len(l.Organizations)),
			groups:    make(map[string]bool, len(l.Groups)),
			users:     make(map[string]bool, len(l.Users)),
			templates: make(map[string]bool, len(l.Templates)),
		},
	}
	for _, u := range l.Users {
		p.usersByName[u.Username] = u
		p.known.users[u.Username] = true
	}
	for _, o := range l.Organizations {
		p.orgNameByID[o.ID] = o.Name
		p.known.orgs[o.Name] = true
	}
	for _, g := range l.Groups {
		p.known.groups[g.Name] = true
	}
	for _, t := range l.Templates {
		p.known.templates[t.ID] = true
		p.known.templates[t.Name] = true
		p.tmplNameByID[t.ID] = t.Name
	}
	return p
}

// Apply returns the ordered subset of workspaces passing all four dimension
// checks. A filter value that does not resolve to any known entity makes its
// dimension match nothing: the result is empty rather than unfiltered.
func (p *Pipeline) Apply(ctx context.Context, workspaces []*model.Workspace, spec Spec) []*model.Workspace {
	log := logging.FromContext(ctx)

	// Concat copies; appending to Include could scribble on the caller's
	// backing array when it has spare capacity.
	for dim, vals := range map[string][]string{
		"organization": append(slices.Clone(spec.Organizations.Include), spec.Organizations.Exclude...),
		"group":        append(slices.Clone(spec.Groups.Include), spec.Groups.Exclude...),
		"user":         append(slices.Clone(spec.Users.Include), spec.Users.Exclude...),
		"template":     append(slices.Clone(spec.Templates.Include), spec.Templates.Exclude...),
	} {
		for _, v := range vals {
			if !p.knownValue(dim, v) {
				log.Warn(ctx, "unknown filter value, dimension matches nothing",
					"error", model.ErrFilterResolution, "dimension", dim, "value", v)
				return nil
			}
		}
	}

	var out []*model.Workspace
	for _, ws := range workspaces {
		owner, ok := p.usersByName[ws.OwnerName]
		if !ok {
			log.Warn(ctx, "workspace owner not in user listing, skipping",
				"workspace", ws.Summary(), "owner", ws.OwnerName)
			continue
		}
		if !passes(spec.Users, func(v string) bool { return v == ws.OwnerName }) {
			continue
		}
		tmplName := p.tmplNameByID[ws.TemplateID]
		if !passes(spec.Templates, func(v string) bool { return v == ws.TemplateID || (tmplName != "" && v == tmplName) }) {
			continue
		}
		if !spec.Organizations.empty() || !spec.Groups.empty() {
			m := p.resolveMembership(owner)
			if !passes(spec.Organizations, func(v string) bool { return m.orgs[v] }) {
				continue
			}
			if !passes(spec.Groups, func(v string) bool { return m.groups[v] }) {
				continue
			}
		}
		out = append(out, ws)
	}
	return out
}

func (p *Pipeline) knownValue(dim, v string) bool {
	switch dim {
	case "organization":
		return p.known.orgs[v]
	case "group":
		return p.known.groups[v]
	case "user":
		return p.known.users[v]
	default:
		return p.known.templates[v]
	}
}

// passes evaluates one dimension: a non-empty include set requires at least
// one match, and any exclude match removes the entity. Exclude always wins.
func passes(d Dimension, match func(v string) bool) bool {
	for _, v := range d.Exclude {
		if match(v) {
			return false
		}
	}
	if len(d.Include) == 0 {
		return true
	}
	for _, v := range d.Include {
		if match(v) {
			return true
		}
	}
	return false
}

// resolveMembership derives the owner's organization and group names,
// caching the result for the rest of the run.
func (p *Pipeline) resolveMembership(u *model.User) *membership {
	if m, ok := p.memberships[u.ID]; ok {
		return m
	}
	m := &membership{orgs: make(map[string]bool), groups: make(map[string]bool)}
	for _, orgID := range u.OrganizationIDs {
		if name, ok := p.orgNameByID[orgID]; ok {
			m.orgs[name] = true
		}
	}
	for _, g := range p.groups {
		for _, memberID := range g.MemberIDs {
			if memberID == u.ID {
				m.groups[g.Name] = true
				break
			}
		}
	}
	p.memberships[u.ID] = m
	return m
}
