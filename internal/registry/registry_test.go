package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/mapper"
	"github.com/gandhrekunal/scim/internal/scim"
)

type stubMapper struct {
	names   []string
	creator bool
}

func (s *stubMapper) ResourceNames() []string { return s.names }
func (s *stubMapper) SupportsCreate() bool    { return s.creator }
func (s *stubMapper) ToSCIMAttributes(string, *directory.Entry, scim.AttributeSelection) ([]*scim.SCIMAttribute, error) {
	return nil, nil
}
func (s *stubMapper) ToLDAPEntry(*scim.SCIMResource, string) (*directory.Entry, error) { return nil, nil }
func (s *stubMapper) ToLDAPAttributes(*scim.SCIMResource) ([]directory.Attribute, error) {
	return nil, nil
}
func (s *stubMapper) ToLDAPModifications(*directory.Entry, *scim.SCIMResource) ([]directory.Modification, error) {
	return nil, nil
}

func TestRegisterRejectsSecondCreator(t *testing.T) {
	f := NewFacade()
	require.NoError(t, f.Register(&stubMapper{names: []string{"User"}, creator: true}))

	err := f.Register(&stubMapper{names: []string{"User"}, creator: true})
	require.Error(t, err)
	var multi *scim.MultipleCreatorsError
	assert.ErrorAs(t, err, &multi)
}

func TestRegisterAllowsMultipleNonCreators(t *testing.T) {
	f := NewFacade()
	require.NoError(t, f.Register(&stubMapper{names: []string{"User"}, creator: true}))
	require.NoError(t, f.Register(&stubMapper{names: []string{"User"}, creator: false}))
	require.NoError(t, f.Register(&stubMapper{names: []string{"User"}, creator: false}))

	assert.Len(t, f.GetResourceMappers("User"), 3)
}

func TestGetResourceMappersPreservesRegistrationOrder(t *testing.T) {
	f := NewFacade()
	first := &stubMapper{names: []string{"User"}, creator: true}
	second := &stubMapper{names: []string{"User"}, creator: false}
	require.NoError(t, f.Register(first))
	require.NoError(t, f.Register(second))

	mappers := f.GetResourceMappers("User")
	require.Len(t, mappers, 2)
	assert.Same(t, first, mappers[0])
	assert.Same(t, second, mappers[1])
}

func TestCreatorLookup(t *testing.T) {
	f := NewFacade()
	creator := &stubMapper{names: []string{"Group"}, creator: true}
	require.NoError(t, f.Register(creator))
	require.NoError(t, f.Register(&stubMapper{names: []string{"Group"}, creator: false}))

	found, ok := f.Creator("Group")
	require.True(t, ok)
	assert.Same(t, creator, found)

	_, ok = f.Creator("User")
	assert.False(t, ok)
}

func TestFacadeWithRealMappers(t *testing.T) {
	f := NewFacade()
	require.NoError(t, f.Register(mapper.NewUserMapper()))
	require.NoError(t, f.Register(mapper.NewADExtensionMapper()))

	creator, ok := f.Creator("User")
	require.True(t, ok)
	assert.True(t, creator.SupportsCreate())
	assert.Len(t, f.GetResourceMappers("User"), 2)
}
