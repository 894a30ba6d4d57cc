package mapper

import "github.com/gandhrekunal/scim/internal/scim"

// scimCoreNamespace is the namespace URI the core SCIM User/Group schema
// uses for its attributes, for descriptors registered in the catalogue
// (C2). The AD extension attributes use their own namespace (adextension.go).
const scimCoreNamespace = "urn:ietf:params:scim:schemas:core:2.0"

// UserResourceDescriptor builds the descriptor for the "User" resource
// kind, matching the attribute set the scenario setup in §8 names:
// userName, name (givenName/familyName/formatted), emails, phoneNumbers,
// addresses.
func UserResourceDescriptor() *scim.ResourceDescriptor {
	name := scim.NewComplexAttribute("name", scimCoreNamespace,
		scim.NewSimpleAttribute("givenName", scimCoreNamespace, scim.DataTypeString),
		scim.NewSimpleAttribute("familyName", scimCoreNamespace, scim.DataTypeString),
		scim.NewSimpleAttribute("formatted", scimCoreNamespace, scim.DataTypeString),
	)

	addresses := scim.NewMultiValuedAttribute("addresses", scimCoreNamespace,
		scim.NewSimpleAttribute("formatted", scimCoreNamespace, scim.DataTypeString),
		scim.NewSimpleAttribute("streetAddress", scimCoreNamespace, scim.DataTypeString),
		scim.NewSimpleAttribute("locality", scimCoreNamespace, scim.DataTypeString),
		scim.NewSimpleAttribute("region", scimCoreNamespace, scim.DataTypeString),
		scim.NewSimpleAttribute("postalCode", scimCoreNamespace, scim.DataTypeString),
	)

	return scim.NewResourceDescriptor("User", scimCoreNamespace,
		scim.NewSimpleAttribute("userName", scimCoreNamespace, scim.DataTypeString),
		name,
		scim.NewMultiValuedAttribute("emails", scimCoreNamespace),
		scim.NewMultiValuedAttribute("phoneNumbers", scimCoreNamespace),
		addresses,
	)
}

// GroupResourceDescriptor builds the descriptor for the "Group" resource
// kind: a display name and a multi-valued membership list of member
// references.
func GroupResourceDescriptor() *scim.ResourceDescriptor {
	return scim.NewResourceDescriptor("Group", scimCoreNamespace,
		scim.NewSimpleAttribute("displayName", scimCoreNamespace, scim.DataTypeString),
		scim.NewMultiValuedAttribute("members", scimCoreNamespace),
	)
}
