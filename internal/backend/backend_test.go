package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/mapper"
	"github.com/gandhrekunal/scim/internal/registry"
	"github.com/gandhrekunal/scim/internal/scim"
	"github.com/gandhrekunal/scim/internal/testdirectory"
)

const baseDN = "dc=example,dc=com"

func newTestBackend(t *testing.T) (*Backend, *testdirectory.Directory) {
	t.Helper()

	catalogue := scim.NewCatalogue()
	catalogue.MustRegister(mapper.UserResourceDescriptor())
	catalogue.MustRegister(mapper.GroupResourceDescriptor())

	facade := registry.NewFacade()
	require.NoError(t, facade.Register(mapper.NewUserMapper()))
	require.NoError(t, facade.Register(mapper.NewADExtensionMapper()))
	require.NoError(t, facade.Register(mapper.NewGroupMapper()))

	dir := testdirectory.New()
	return NewBackend(catalogue, facade, dir, baseDN, nil), dir
}

// S1: GET of a nonexistent resource returns the distinguished-null result.
func TestGetMiss(t *testing.T) {
	b, _ := newTestBackend(t)

	resource, err := b.Get(context.Background(), &scim.GetResourceRequest{
		ResourceName: "User",
		ResourceID:   "uid=ghost," + baseDN,
		Selection:    scim.SelectAll(),
	})
	require.NoError(t, err)
	assert.Nil(t, resource)
}

// S2: GET with a selection of {userName} returns only userName, no id, no name.
func TestGetProjection(t *testing.T) {
	b, dir := newTestBackend(t)

	dn := "uid=b jensen," + baseDN
	entry := directory.NewEntry(dn)
	entry.SetValues("uid", []byte("b jensen"))
	entry.SetValues("sn", []byte("Jensen"))
	entry.SetValues("givenName", []byte("Barbara"))
	dir.Seed(entry)

	resource, err := b.Get(context.Background(), &scim.GetResourceRequest{
		ResourceName: "User",
		ResourceID:   dn,
		Selection:    scim.SelectNames("userName"),
	})
	require.NoError(t, err)
	require.NotNil(t, resource)

	assert.Equal(t, "b jensen", resource.StringValue("userName"))
	_, hasID := resource.Get("id")
	assert.False(t, hasID)
	_, hasName := resource.Get("name")
	assert.False(t, hasName)
}

// B1: empty selection returns only id.
func TestGetEmptySelection(t *testing.T) {
	b, dir := newTestBackend(t)

	dn := "uid=alice," + baseDN
	entry := directory.NewEntry(dn)
	entry.SetValues("uid", []byte("alice"))
	dir.Seed(entry)

	resource, err := b.Get(context.Background(), &scim.GetResourceRequest{
		ResourceName: "User",
		ResourceID:   dn,
		Selection:    scim.SelectNames(),
	})
	require.NoError(t, err)
	require.NotNil(t, resource)

	assert.Equal(t, dn, resource.ID())
	assert.Len(t, resource.Attributes, 1)
}

// S3: POST round-trips; the committed entry reflects the mapped attributes.
func TestPostRoundTrip(t *testing.T) {
	b, dir := newTestBackend(t)

	resource := scim.NewSCIMResource("User")
	userNameDesc, _ := mapper.UserResourceDescriptor().Attribute("userName")
	nameDesc, _ := mapper.UserResourceDescriptor().Attribute("name")
	resource.Set(&scim.SCIMAttribute{Descriptor: userNameDesc, Value: "bjensen"})
	resource.Set(&scim.SCIMAttribute{Descriptor: nameDesc, Value: map[string]any{
		"familyName": "Jensen",
		"givenName":  "Barbara",
		"formatted":  "Ms. Barbara J Jensen III",
	}})

	response, err := b.Post(context.Background(), &scim.PostResourceRequest{
		ResourceName: "User",
		Resource:     resource,
		Selection:    scim.SelectAll(),
	})
	require.NoError(t, err)
	require.NotNil(t, response)

	assert.Equal(t, "uid=bjensen,"+baseDN, response.ID())

	committed, err := dir.SearchSingleEntry(context.Background(), &directory.SearchRequest{
		BaseDN: "uid=bjensen," + baseDN,
		Scope:  directory.ScopeBaseObject,
		Filter: "(objectclass=*)",
	})
	require.NoError(t, err)
	require.NotNil(t, committed)
	assert.Equal(t, "Jensen", string(committed.GetValue("sn")))
	assert.Equal(t, "Ms. Barbara J Jensen III", string(committed.GetValue("cn")))
	assert.Equal(t, "Barbara", string(committed.GetValue("givenName")))
}

// B3: POST with no creator-capable mapper fails with NoCreatorError.
func TestPostNoCreator(t *testing.T) {
	catalogue := scim.NewCatalogue()
	catalogue.MustRegister(mapper.UserResourceDescriptor())
	facade := registry.NewFacade()
	require.NoError(t, facade.Register(mapper.NewADExtensionMapper()))
	dir := testdirectory.New()
	b := NewBackend(catalogue, facade, dir, baseDN, nil)

	resource := scim.NewSCIMResource("User")
	_, err := b.Post(context.Background(), &scim.PostResourceRequest{
		ResourceName: "User",
		Resource:     resource,
		Selection:    scim.SelectAll(),
	})
	require.Error(t, err)
	var noCreator *scim.NoCreatorError
	assert.ErrorAs(t, err, &noCreator)
}

// S4: DELETE is idempotent: true then false, entry gone either way.
func TestDeleteIdempotent(t *testing.T) {
	b, dir := newTestBackend(t)

	dn := "uid=bjensen," + baseDN
	dir.Seed(directory.NewEntry(dn))

	first, err := b.Delete(context.Background(), &scim.DeleteResourceRequest{ResourceName: "User", ResourceID: dn})
	require.NoError(t, err)
	assert.True(t, first)

	second, err := b.Delete(context.Background(), &scim.DeleteResourceRequest{ResourceName: "User", ResourceID: dn})
	require.NoError(t, err)
	assert.False(t, second)

	entry, err := dir.SearchSingleEntry(context.Background(), &directory.SearchRequest{
		BaseDN: dn, Scope: directory.ScopeBaseObject, Filter: "(objectclass=*)",
	})
	require.NoError(t, err)
	assert.Nil(t, entry)
}

// S5: PUT preserves attributes not covered by any mapper (invariant I3).
func TestPutPreservesUntouched(t *testing.T) {
	b, dir := newTestBackend(t)

	dn := "uid=bjensen," + baseDN
	entry := directory.NewEntry(dn)
	entry.SetValues("uid", []byte("bjensen"))
	entry.SetValues("description", []byte("keep"))
	dir.Seed(entry)

	resource := scim.NewSCIMResource("User")
	emailsDesc, _ := mapper.UserResourceDescriptor().Attribute("emails")
	resource.Set(&scim.SCIMAttribute{Descriptor: emailsDesc, Value: []scim.MultiValuedElement{
		{"type": "work", "value": "bjensen@example.com"},
	}})

	response, err := b.Put(context.Background(), &scim.PutResourceRequest{
		ResourceName: "User",
		ResourceID:   dn,
		Resource:     resource,
		Selection:    scim.SelectAll(),
	})
	require.NoError(t, err)
	require.NotNil(t, response)

	committed, err := dir.SearchSingleEntry(context.Background(), &directory.SearchRequest{
		BaseDN: dn, Scope: directory.ScopeBaseObject, Filter: "(objectclass=*)",
	})
	require.NoError(t, err)
	require.NotNil(t, committed)
	assert.Equal(t, []byte("bjensen@example.com"), committed.GetValue("mail"))
	assert.Equal(t, []byte("keep"), committed.GetValue("description"))
}

// S6: PUT that omits a previously-present element removes only that
// element's LDAP attribute, leaving siblings intact.
func TestPutRemovesOmittedElement(t *testing.T) {
	b, dir := newTestBackend(t)

	dn := "uid=bjensen," + baseDN
	entry := directory.NewEntry(dn)
	entry.SetValues("uid", []byte("bjensen"))
	entry.SetValues("telephoneNumber", []byte("+1 555 0100"))
	entry.SetValues("homePhone", []byte("+1 555 0101"))
	dir.Seed(entry)

	resource := scim.NewSCIMResource("User")
	phonesDesc, _ := mapper.UserResourceDescriptor().Attribute("phoneNumbers")
	resource.Set(&scim.SCIMAttribute{Descriptor: phonesDesc, Value: []scim.MultiValuedElement{
		{"type": "work", "value": "+1 555 0100"},
	}})

	_, err := b.Put(context.Background(), &scim.PutResourceRequest{
		ResourceName: "User",
		ResourceID:   dn,
		Resource:     resource,
		Selection:    scim.SelectAll(),
	})
	require.NoError(t, err)

	committed, err := dir.SearchSingleEntry(context.Background(), &directory.SearchRequest{
		BaseDN: dn, Scope: directory.ScopeBaseObject, Filter: "(objectclass=*)",
	})
	require.NoError(t, err)
	require.NotNil(t, committed)
	assert.Equal(t, []byte("+1 555 0100"), committed.GetValue("telephoneNumber"))
	assert.Nil(t, committed.GetValue("homePhone"))
}

// PUT of a nonexistent resource returns the distinguished-null result.
func TestPutMiss(t *testing.T) {
	b, _ := newTestBackend(t)

	resource, err := b.Put(context.Background(), &scim.PutResourceRequest{
		ResourceName: "User",
		ResourceID:   "uid=ghost," + baseDN,
		Resource:     scim.NewSCIMResource("User"),
		Selection:    scim.SelectAll(),
	})
	require.NoError(t, err)
	assert.Nil(t, resource)
}
