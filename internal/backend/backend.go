// Package backend implements the C5 LDAP backend: the four resource
// operations, composed from C3 (resource mappers), C4 (the pooled LDAP
// interface), C2 (the descriptor catalogue), and C7 (the mapper facade).
package backend

import (
	"context"
	"errors"

	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/registry"
	"github.com/gandhrekunal/scim/internal/scim"
)

// Backend implements the four CRUD verbs of §4.5. It holds no per-request
// state: the catalogue, facade, and LDAP interface provider are all
// injected context rather than global singletons, per the design notes.
type Backend struct {
	catalogue *scim.Catalogue
	facade    *registry.Facade
	provider  directory.LDAPInterfaceProvider
	baseDN    string
	logger    directory.Logger
}

// NewBackend constructs a backend. logger may be nil, in which case
// operations log nowhere.
func NewBackend(catalogue *scim.Catalogue, facade *registry.Facade, provider directory.LDAPInterfaceProvider, baseDN string, logger directory.Logger) *Backend {
	if logger == nil {
		logger = directory.NopLogger{}
	}
	return &Backend{catalogue: catalogue, facade: facade, provider: provider, baseDN: baseDN, logger: logger}
}

// wrapBackendError translates a non-nil directory failure into a
// *scim.BackendError carrying the LDAP result code and defunct
// classification, per §7's error taxonomy. The original error is preserved
// as Cause and never swallowed.
func wrapBackendError(operation string, err error) error {
	if err == nil {
		return nil
	}
	code, _ := directory.ResultCode(err)
	return &scim.BackendError{
		Operation: operation,
		Code:      code,
		Defunct:   directory.IsDefunctResultCode(code),
		Cause:     err,
	}
}

// composeResource builds a SCIM resource from a directory entry by merging
// every registered mapper's contribution, then narrowing to selection.
// Duplicate attribute names across mappers: last mapper wins, i.e.
// registration order is the tie-break (§4.5).
func (b *Backend) composeResource(resourceName string, entry *directory.Entry, selection scim.AttributeSelection) (*scim.SCIMResource, error) {
	desc, err := b.catalogue.GetResourceDescriptor(resourceName)
	if err != nil {
		return nil, err
	}

	resource := scim.NewSCIMResource(resourceName)
	// "id" is included when explicitly requested, when the selection is
	// "all", or when the selection is the explicit empty set (boundary B1;
	// see DESIGN.md for why a non-empty selection that omits "id" — S2 —
	// is treated differently from the empty selection).
	if selection.IsRequested("id") || selection.IsEmpty() {
		if idDesc, ok := desc.Attribute("id"); ok {
			resource.Set(&scim.SCIMAttribute{Descriptor: idDesc, Value: entry.DN})
		}
	}

	for _, m := range b.facade.GetResourceMappers(resourceName) {
		attrs, err := m.ToSCIMAttributes(resourceName, entry, selection)
		if err != nil {
			return nil, err
		}
		for _, a := range attrs {
			resource.Set(a)
		}
	}

	for name := range resource.Attributes {
		if name != "id" && !selection.IsRequested(name) {
			delete(resource.Attributes, name)
		}
	}

	return resource, nil
}

// Get implements the GET verb (§4.5): a base-scope search for the
// identifier. A missing entry returns (nil, nil) — the distinguished-null
// result, per §7 and invariant I6's sibling behavior for GET.
func (b *Backend) Get(ctx context.Context, req *scim.GetResourceRequest) (*scim.SCIMResource, error) {
	if _, err := b.catalogue.GetResourceDescriptor(req.ResourceName); err != nil {
		return nil, err
	}

	server, err := b.provider.GetLDAPInterface(ctx)
	if err != nil {
		return nil, wrapBackendError("get", err)
	}

	var entry *directory.Entry
	err = directory.LogOperation(b.logger, "get", map[string]any{"resource": req.ResourceName, "id": req.ResourceID}, func() error {
		var searchErr error
		entry, searchErr = server.SearchSingleEntry(ctx, &directory.SearchRequest{
			BaseDN: req.ResourceID,
			Scope:  directory.ScopeBaseObject,
			Filter: "(objectclass=*)",
		})
		return searchErr
	})
	if err != nil {
		return nil, wrapBackendError("get", err)
	}
	if entry == nil {
		return nil, nil
	}

	return b.composeResource(req.ResourceName, entry, req.Selection)
}

// Post implements the POST verb (§4.5): the first creator-capable mapper
// builds the skeleton entry, every other mapper contributes attributes,
// and the committed entry (from the post-read control) is the sole source
// of the response (invariant I2).
func (b *Backend) Post(ctx context.Context, req *scim.PostResourceRequest) (*scim.SCIMResource, error) {
	if _, err := b.catalogue.GetResourceDescriptor(req.ResourceName); err != nil {
		return nil, err
	}

	creator, ok := b.facade.Creator(req.ResourceName)
	if !ok {
		return nil, &scim.NoCreatorError{ResourceName: req.ResourceName}
	}

	skeleton, err := creator.ToLDAPEntry(req.Resource, b.baseDN)
	if err != nil {
		return nil, err
	}

	var attrs []directory.Attribute
	for name, values := range skeleton.Attributes {
		attrs = append(attrs, directory.Attribute{Name: name, Values: values})
	}

	for _, m := range b.facade.GetResourceMappers(req.ResourceName) {
		if m == creator {
			continue
		}
		extra, err := m.ToLDAPAttributes(req.Resource)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, extra...)
	}

	server, err := b.provider.GetLDAPInterface(ctx)
	if err != nil {
		return nil, wrapBackendError("post", err)
	}

	var committed *directory.Entry
	err = directory.LogOperation(b.logger, "post", map[string]any{"resource": req.ResourceName, "dn": skeleton.DN}, func() error {
		var addErr error
		committed, addErr = server.Add(ctx, skeleton.DN, attrs)
		return addErr
	})
	if err != nil {
		return nil, wrapBackendError("post", err)
	}
	if committed == nil {
		return nil, wrapBackendError("post", directory.ErrNoSuchObject)
	}

	return b.composeResource(req.ResourceName, committed, req.Selection)
}

// Put implements the PUT verb (§4.5): a missing entry returns the
// distinguished-null result; otherwise every mapper's modifications are
// applied in one request carrying a post-read control, and the response is
// built from the post-read entry.
func (b *Backend) Put(ctx context.Context, req *scim.PutResourceRequest) (*scim.SCIMResource, error) {
	if _, err := b.catalogue.GetResourceDescriptor(req.ResourceName); err != nil {
		return nil, err
	}

	server, err := b.provider.GetLDAPInterface(ctx)
	if err != nil {
		return nil, wrapBackendError("put", err)
	}

	current, err := server.SearchSingleEntry(ctx, &directory.SearchRequest{
		BaseDN: req.ResourceID,
		Scope:  directory.ScopeBaseObject,
		Filter: "(objectclass=*)",
	})
	if err != nil {
		return nil, wrapBackendError("put", err)
	}
	if current == nil {
		return nil, nil
	}

	var mods []directory.Modification
	for _, m := range b.facade.GetResourceMappers(req.ResourceName) {
		extra, err := m.ToLDAPModifications(current, req.Resource)
		if err != nil {
			return nil, err
		}
		mods = append(mods, extra...)
	}

	var committed *directory.Entry
	err = directory.LogOperation(b.logger, "put", map[string]any{"resource": req.ResourceName, "id": req.ResourceID, "changes": len(mods)}, func() error {
		var modifyErr error
		committed, modifyErr = server.Modify(ctx, req.ResourceID, mods)
		return modifyErr
	})
	if err != nil {
		return nil, wrapBackendError("put", err)
	}
	if committed == nil {
		return nil, nil
	}

	return b.composeResource(req.ResourceName, committed, req.Selection)
}

// Delete implements the DELETE verb (§4.5): success returns true,
// noSuchObject returns false without error (invariant I6), any other
// result code propagates as *scim.BackendError.
func (b *Backend) Delete(ctx context.Context, req *scim.DeleteResourceRequest) (bool, error) {
	server, err := b.provider.GetLDAPInterface(ctx)
	if err != nil {
		return false, wrapBackendError("delete", err)
	}

	err = directory.LogOperation(b.logger, "delete", map[string]any{"id": req.ResourceID}, func() error {
		return server.Delete(ctx, req.ResourceID)
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, directory.ErrNoSuchObject) {
		return false, nil
	}
	return false, wrapBackendError("delete", err)
}
