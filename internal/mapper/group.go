package mapper

import (
	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/scim"
)

// GroupMapper is the creator mapper for the "Group" resource kind: a
// display name (cn) and a membership list of DN references (member).
type GroupMapper struct {
	descriptor *scim.ResourceDescriptor
}

// NewGroupMapper builds the core Group mapper.
func NewGroupMapper() *GroupMapper {
	return &GroupMapper{descriptor: GroupResourceDescriptor()}
}

func (m *GroupMapper) ResourceNames() []string { return []string{"Group"} }

func (m *GroupMapper) SupportsCreate() bool { return true }

func (m *GroupMapper) attr(name string) *scim.AttributeDescriptor {
	d, _ := m.descriptor.Attribute(name)
	return d
}

func (m *GroupMapper) ToSCIMAttributes(resourceName string, entry *directory.Entry, selection scim.AttributeSelection) ([]*scim.SCIMAttribute, error) {
	if resourceName != "Group" || entry == nil {
		return nil, nil
	}

	var attrs []*scim.SCIMAttribute

	if selection.IsRequested("displayName") {
		if v := entry.GetValue("cn"); v != nil {
			attrs = append(attrs, &scim.SCIMAttribute{Descriptor: m.attr("displayName"), Value: string(v)})
		}
	}

	if selection.IsRequested("members") {
		if values := entry.GetValues("member"); len(values) > 0 {
			elements := make([]scim.MultiValuedElement, 0, len(values))
			for _, v := range values {
				elements = append(elements, scim.MultiValuedElement{"type": "direct", "value": string(v)})
			}
			attrs = append(attrs, &scim.SCIMAttribute{Descriptor: m.attr("members"), Value: elements})
		}
	}

	return attrs, nil
}

func (m *GroupMapper) ToLDAPEntry(resource *scim.SCIMResource, baseDN string) (*directory.Entry, error) {
	displayName := resource.StringValue("displayName")
	if displayName == "" {
		return nil, &scim.IncompleteResourceError{ResourceName: "Group", Attribute: "displayName"}
	}

	dn := directory.BuildDN("cn", displayName, baseDN)
	entry := directory.NewEntry(dn)
	entry.SetValues("cn", []byte(displayName))
	return entry, nil
}

func (m *GroupMapper) ToLDAPAttributes(resource *scim.SCIMResource) ([]directory.Attribute, error) {
	members := memberValues(resource)
	if len(members) == 0 {
		return nil, nil
	}
	return []directory.Attribute{{Name: "member", Values: members}}, nil
}

func (m *GroupMapper) ToLDAPModifications(currentEntry *directory.Entry, desiredResource *scim.SCIMResource) ([]directory.Modification, error) {
	var mods []directory.Modification
	if mod := diffValues("member", currentEntry.GetValues("member"), memberValues(desiredResource)); mod != nil {
		mods = append(mods, *mod)
	}
	return mods, nil
}

func memberValues(resource *scim.SCIMResource) [][]byte {
	var values [][]byte
	for _, el := range resource.MultiValue("members") {
		if v, _ := el["value"].(string); v != "" {
			values = append(values, []byte(v))
		}
	}
	return values
}
