package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/scim"
)

const baseDN = "dc=example,dc=com"

func resourceWithName(userName, given, family, formatted string) *scim.SCIMResource {
	desc := UserResourceDescriptor()
	resource := scim.NewSCIMResource("User")
	if userName != "" {
		d, _ := desc.Attribute("userName")
		resource.Set(&scim.SCIMAttribute{Descriptor: d, Value: userName})
	}
	if given != "" || family != "" || formatted != "" {
		d, _ := desc.Attribute("name")
		resource.Set(&scim.SCIMAttribute{Descriptor: d, Value: map[string]any{
			"givenName":  given,
			"familyName": family,
			"formatted":  formatted,
		}})
	}
	return resource
}

func TestUserMapperToLDAPEntryRequiresUserName(t *testing.T) {
	m := NewUserMapper()
	_, err := m.ToLDAPEntry(scim.NewSCIMResource("User"), baseDN)
	require.Error(t, err)
	var incomplete *scim.IncompleteResourceError
	assert.ErrorAs(t, err, &incomplete)
}

func TestUserMapperToLDAPEntryEscapesDN(t *testing.T) {
	m := NewUserMapper()
	resource := resourceWithName("Doe, Jane", "Jane", "Doe", "")

	entry, err := m.ToLDAPEntry(resource, baseDN)
	require.NoError(t, err)
	assert.Equal(t, `uid=Doe\, Jane,dc=example,dc=com`, entry.DN)
}

func TestUserMapperResolveCNPrefersFormatted(t *testing.T) {
	m := NewUserMapper()
	resource := resourceWithName("bjensen", "Barbara", "Jensen", "Ms. Barbara J Jensen III")

	entry, err := m.ToLDAPEntry(resource, baseDN)
	require.NoError(t, err)
	assert.Equal(t, []byte("Ms. Barbara J Jensen III"), entry.GetValue("cn"))
}

func TestUserMapperResolveCNFallsBackToGivenFamily(t *testing.T) {
	m := NewUserMapper()
	resource := resourceWithName("bjensen", "Barbara", "Jensen", "")

	entry, err := m.ToLDAPEntry(resource, baseDN)
	require.NoError(t, err)
	assert.Equal(t, []byte("Barbara Jensen"), entry.GetValue("cn"))
}

func TestUserMapperResolveCNFallsBackToUserName(t *testing.T) {
	m := NewUserMapper()
	resource := resourceWithName("bjensen", "", "", "")

	entry, err := m.ToLDAPEntry(resource, baseDN)
	require.NoError(t, err)
	assert.Equal(t, []byte("bjensen"), entry.GetValue("cn"))
}

func TestUserMapperToSCIMAttributesRespectsSelection(t *testing.T) {
	m := NewUserMapper()
	entry := directory.NewEntry("uid=bjensen," + baseDN)
	entry.SetValues("uid", []byte("bjensen"))
	entry.SetValues("mail", []byte("bjensen@example.com"))

	attrs, err := m.ToSCIMAttributes("User", entry, scim.SelectNames("userName"))
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "userName", attrs[0].Descriptor.Name)
}

func TestUserMapperEmailsAttributeMultiValued(t *testing.T) {
	m := NewUserMapper()
	entry := directory.NewEntry("uid=bjensen," + baseDN)
	entry.AddValues("mail", []byte("bjensen@example.com"), []byte("jensen@example.com"))

	attrs, err := m.ToSCIMAttributes("User", entry, scim.SelectAll())
	require.NoError(t, err)

	var emails *scim.SCIMAttribute
	for _, a := range attrs {
		if a.Descriptor.Name == "emails" {
			emails = a
		}
	}
	require.NotNil(t, emails)
	elements := emails.Value.([]scim.MultiValuedElement)
	assert.Len(t, elements, 2)
}

func TestUserMapperToLDAPModificationsDiffsPhoneNumbersIndependently(t *testing.T) {
	m := NewUserMapper()
	current := directory.NewEntry("uid=bjensen," + baseDN)
	current.SetValues("telephoneNumber", []byte("+1 555 0100"))
	current.SetValues("homePhone", []byte("+1 555 0101"))

	desc := UserResourceDescriptor()
	phonesDesc, _ := desc.Attribute("phoneNumbers")
	resource := scim.NewSCIMResource("User")
	resource.Set(&scim.SCIMAttribute{Descriptor: phonesDesc, Value: []scim.MultiValuedElement{
		{"type": "work", "value": "+1 555 0100"},
	}})

	mods, err := m.ToLDAPModifications(current, resource)
	require.NoError(t, err)

	var sawHomeDelete bool
	for _, mod := range mods {
		if mod.Name == "homePhone" {
			sawHomeDelete = true
			assert.Equal(t, directory.ModDelete, mod.Op)
		}
		if mod.Name == "telephoneNumber" {
			t.Fatalf("unchanged telephoneNumber should not produce a modification")
		}
	}
	assert.True(t, sawHomeDelete)
}
