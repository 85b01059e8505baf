package filter

import (
	"context"
	"testing"

	"github.com/coderops/nightshift/domain/model"
)

func testListings() Listings {
	return Listings{
		Users: []*model.User{
			{ID: "u1", Username: "alice", OrganizationIDs: []string{"o1"}},
			{ID: "u2", Username: "bob", OrganizationIDs: []string{"o1", "o2"}},
			{ID: "u3", Username: "carol", OrganizationIDs: []string{"o2"}},
		},
		Organizations: []*model.Organization{
			{ID: "o1", Name: "engineering"},
			{ID: "o2", Name: "research"},
		},
		Groups: []*model.Group{
			{ID: "g1", Name: "backend", OrganizationID: "o1", MemberIDs: []string{"u1", "u2"}},
			{ID: "g2", Name: "ml", OrganizationID: "o2", MemberIDs: []string{"u3"}},
		},
		Templates: []*model.Template{
			{ID: "t1", Name: "ubuntu"},
			{ID: "t2", Name: "gpu-box"},
		},
	}
}

func testWorkspaces() []*model.Workspace {
	return []*model.Workspace{
		{ID: "w1", Name: "dev", OwnerName: "alice", TemplateID: "t1", Status: model.StatusRunning},
		{ID: "w2", Name: "train", OwnerName: "bob", TemplateID: "t2", Status: model.StatusRunning},
		{ID: "w3", Name: "lab", OwnerName: "carol", TemplateID: "t2", Status: model.StatusRunning},
	}
}

func names(ws []*model.Workspace) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Name)
	}
	return out
}

func equalNames(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyNoFilters(t *testing.T) {
	p := New(testListings())
	got := p.Apply(context.Background(), testWorkspaces(), Spec{})
	if !equalNames(names(got), "dev", "train", "lab") {
		t.Fatalf("empty spec should pass everything in order, got %v", names(got))
	}
}

func TestApplyDimensions(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []string
	}{
		{
			name: "include user",
			spec: Spec{Users: Dimension{Include: []string{"alice"}}},
			want: []string{"dev"},
		},
		{
			name: "exclude user",
			spec: Spec{Users: Dimension{Exclude: []string{"bob"}}},
			want: []string{"dev", "lab"},
		},
		{
			name: "exclude wins over include",
			spec: Spec{Users: Dimension{Include: []string{"alice", "bob"}, Exclude: []string{"bob"}}},
			want: []string{"dev"},
		},
		{
			name: "include template by id",
			spec: Spec{Templates: Dimension{Include: []string{"t2"}}},
			want: []string{"train", "lab"},
		},
		{
			name: "include template by name",
			spec: Spec{Templates: Dimension{Include: []string{"gpu-box"}}},
			want: []string{"train", "lab"},
		},
		{
			name: "include organization",
			spec: Spec{Organizations: Dimension{Include: []string{"engineering"}}},
			want: []string{"dev", "train"},
		},
		{
			name: "exclude organization",
			spec: Spec{Organizations: Dimension{Exclude: []string{"research"}}},
			want: []string{"dev"},
		},
		{
			name: "include group",
			spec: Spec{Groups: Dimension{Include: []string{"ml"}}},
			want: []string{"lab"},
		},
		{
			name: "combined user and template",
			spec: Spec{
				Users:     Dimension{Exclude: []string{"carol"}},
				Templates: Dimension{Include: []string{"t2"}},
			},
			want: []string{"train"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(testListings())
			got := names(p.Apply(context.Background(), testWorkspaces(), tt.spec))
			if !equalNames(got, tt.want...) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyUnknownValueFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{name: "unknown user", spec: Spec{Users: Dimension{Include: []string{"mallory"}}}},
		{name: "unknown org in exclude", spec: Spec{Organizations: Dimension{Exclude: []string{"sales"}}}},
		{name: "unknown template", spec: Spec{Templates: Dimension{Include: []string{"t9"}}}},
		{name: "unknown group", spec: Spec{Groups: Dimension{Include: []string{"frontend"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(testListings())
			got := p.Apply(context.Background(), testWorkspaces(), tt.spec)
			if len(got) != 0 {
				t.Fatalf("unknown filter value must match nothing, got %v", names(got))
			}
		})
	}
}

func TestApplyLeavesSpecSlicesIntact(t *testing.T) {
	// Include shares a backing array with extra values; validating the spec
	// must not write through the spare capacity.
	backing := []string{"alice", "carol"}
	spec := Spec{Users: Dimension{Include: backing[:1:2], Exclude: []string{"bob"}}}

	p := New(testListings())
	got := names(p.Apply(context.Background(), testWorkspaces(), spec))
	if !equalNames(got, "dev") {
		t.Fatalf("got %v, want [dev]", got)
	}
	if backing[1] != "carol" {
		t.Fatalf("caller's backing array was overwritten: %v", backing)
	}
}

func TestApplySkipsOrphanedWorkspace(t *testing.T) {
	p := New(testListings())
	ws := append(testWorkspaces(),
		&model.Workspace{ID: "w4", Name: "ghost", OwnerName: "deleted-user", TemplateID: "t1"})
	got := p.Apply(context.Background(), ws, Spec{})
	if !equalNames(names(got), "dev", "train", "lab") {
		t.Fatalf("workspace with unknown owner must be skipped, got %v", names(got))
	}
}
