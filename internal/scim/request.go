package scim

// GetResourceRequest is the immutable carrier for a GET operation: resource
// kind, resource identifier, and attribute selection (§4.5, §6).
type GetResourceRequest struct {
	ResourceName string
	ResourceID   string
	Selection    AttributeSelection
}

// PostResourceRequest is the immutable carrier for a POST (create)
// operation: resource kind and the resource body supplied by the client.
type PostResourceRequest struct {
	ResourceName string
	Resource     *SCIMResource
	Selection    AttributeSelection
}

// PutResourceRequest is the immutable carrier for a PUT (replace)
// operation: resource kind, resource identifier, and the desired resource
// body supplied by the client.
type PutResourceRequest struct {
	ResourceName string
	ResourceID   string
	Resource     *SCIMResource
	Selection    AttributeSelection
}

// DeleteResourceRequest is the immutable carrier for a DELETE operation:
// resource kind and resource identifier.
type DeleteResourceRequest struct {
	ResourceName string
	ResourceID   string
}
