// Package filter resolves include/exclude criteria across four dimensions
// (organization, group, user, template) into the eligible workspace subset.
package filter

// Dimension is one independent include/exclude pair. An empty include set
// passes everything; a match in the exclude set removes the entity
// regardless of the include result.
type Dimension struct {
	Include []string
	Exclude []string
}

func (d Dimension) empty() bool {
	return len(d.Include) == 0 && len(d.Exclude) == 0
}

// Spec carries the filter criteria for all four dimensions.
type Spec struct {
	Organizations Dimension
	Groups        Dimension
	Users         Dimension
	Templates     Dimension
}

// Empty reports whether no criteria are set at all.
func (s Spec) Empty() bool {
	return s.Organizations.empty() && s.Groups.empty() && s.Users.empty() && s.Templates.empty()
}
