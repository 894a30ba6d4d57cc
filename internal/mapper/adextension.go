package mapper

import (
	"encoding/hex"
	"fmt"

	"github.com/bwmarrin/go-objectsid"

	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/scim"
)

// adExtensionNamespace is the extension schema namespace for the two
// Active Directory binary identifiers this mapper decodes.
const adExtensionNamespace = "urn:scim:schemas:extension:ad:1.0"

// guidBytesLength is the fixed byte length of an Active Directory GUID.
const guidBytesLength = 16

// ADExtensionMapper is a second, non-creating mapper for the "User"
// resource kind that decodes AD-specific binary attributes into SCIM
// extension attributes: objectGUID into its canonical hyphenated string
// form, and objectSid into its "S-1-5-21-..." string form via
// go-objectsid. Grounded on the teacher's GUIDHandler/SIDHandler, adapted
// from standalone helper types into a ResourceMapper so it composes with
// UserMapper exactly as §4.3 describes ("multiple mappers may jointly
// handle one resource kind").
type ADExtensionMapper struct {
	guidDescriptor *scim.AttributeDescriptor
	sidDescriptor  *scim.AttributeDescriptor
}

// NewADExtensionMapper builds the AD extension mapper.
func NewADExtensionMapper() *ADExtensionMapper {
	return &ADExtensionMapper{
		guidDescriptor: scim.NewSimpleAttribute("adObjectGUID", adExtensionNamespace, scim.DataTypeString),
		sidDescriptor:  scim.NewSimpleAttribute("adObjectSID", adExtensionNamespace, scim.DataTypeString),
	}
}

func (m *ADExtensionMapper) ResourceNames() []string { return []string{"User"} }

// SupportsCreate is false: this mapper only contributes read-side
// extension attributes decoded from server-generated identifiers: it never
// originates entries (§4.3, §4.6 — exactly one creator per resource name).
func (m *ADExtensionMapper) SupportsCreate() bool { return false }

func (m *ADExtensionMapper) ToSCIMAttributes(resourceName string, entry *directory.Entry, selection scim.AttributeSelection) ([]*scim.SCIMAttribute, error) {
	if resourceName != "User" || entry == nil {
		return nil, nil
	}

	var attrs []*scim.SCIMAttribute

	if selection.IsRequested("adObjectGUID") {
		if raw := entry.GetValue("objectGUID"); len(raw) == guidBytesLength {
			attrs = append(attrs, &scim.SCIMAttribute{Descriptor: m.guidDescriptor, Value: guidBytesToString(raw)})
		}
	}

	if selection.IsRequested("adObjectSID") {
		if raw := entry.GetValue("objectSid"); len(raw) > 0 {
			attrs = append(attrs, &scim.SCIMAttribute{Descriptor: m.sidDescriptor, Value: objectsid.Decode(raw).String()})
		}
	}

	return attrs, nil
}

// ToLDAPEntry is never called: SupportsCreate returns false.
func (m *ADExtensionMapper) ToLDAPEntry(resource *scim.SCIMResource, baseDN string) (*directory.Entry, error) {
	return nil, nil
}

// ToLDAPAttributes contributes nothing: objectGUID and objectSid are
// server-generated and never supplied by a client on create.
func (m *ADExtensionMapper) ToLDAPAttributes(resource *scim.SCIMResource) ([]directory.Attribute, error) {
	return nil, nil
}

// ToLDAPModifications contributes nothing: the extension attributes are
// read-only, server-assigned identifiers outside this mapper's writable
// remit.
func (m *ADExtensionMapper) ToLDAPModifications(currentEntry *directory.Entry, desiredResource *scim.SCIMResource) ([]directory.Modification, error) {
	return nil, nil
}

// guidBytesToString converts Active Directory's mixed-endian objectGUID
// byte encoding into the standard hyphenated string form, adapted from the
// teacher's GUIDHandler.GUIDBytesToString.
func guidBytesToString(guidBytes []byte) string {
	if len(guidBytes) != guidBytesLength {
		return ""
	}

	standard := make([]byte, guidBytesLength)
	standard[0], standard[1], standard[2], standard[3] = guidBytes[3], guidBytes[2], guidBytes[1], guidBytes[0]
	standard[4], standard[5] = guidBytes[5], guidBytes[4]
	standard[6], standard[7] = guidBytes[7], guidBytes[6]
	copy(standard[8:], guidBytes[8:])

	hexString := hex.EncodeToString(standard)
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hexString[0:8], hexString[8:12], hexString[12:16], hexString[16:20], hexString[20:32])
}
