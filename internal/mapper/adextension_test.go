package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/scim"
)

func TestADExtensionMapperIsNotACreator(t *testing.T) {
	m := NewADExtensionMapper()
	assert.False(t, m.SupportsCreate())

	entry, err := m.ToLDAPEntry(scim.NewSCIMResource("User"), baseDN)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestADExtensionMapperDecodesGUID(t *testing.T) {
	m := NewADExtensionMapper()
	entry := directory.NewEntry("uid=bjensen," + baseDN)
	guidBytes := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x05, 0x06,
		0x07, 0x08,
		0x09, 0x0a,
		0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
	}
	entry.SetValues("objectGUID", guidBytes)

	attrs, err := m.ToSCIMAttributes("User", entry, scim.SelectAll())
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "04030201-0605-0807-090a-0b0c0d0e0f10", attrs[0].Value)
}

func TestADExtensionMapperIgnoresMalformedGUID(t *testing.T) {
	m := NewADExtensionMapper()
	entry := directory.NewEntry("uid=bjensen," + baseDN)
	entry.SetValues("objectGUID", []byte{0x01, 0x02})

	attrs, err := m.ToSCIMAttributes("User", entry, scim.SelectAll())
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestADExtensionMapperContributesNothingOnWrite(t *testing.T) {
	m := NewADExtensionMapper()
	resource := scim.NewSCIMResource("User")

	attrs, err := m.ToLDAPAttributes(resource)
	require.NoError(t, err)
	assert.Nil(t, attrs)

	mods, err := m.ToLDAPModifications(directory.NewEntry("uid=bjensen,"+baseDN), resource)
	require.NoError(t, err)
	assert.Nil(t, mods)
}
