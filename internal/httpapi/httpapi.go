// Package httpapi implements the A3 HTTP front end: a net/http.ServeMux
// translating GET/POST/PUT/DELETE against /scim/v2/{Resource}/{id} into the
// C6 request value objects and back, per §4.10's route table and §7's
// error-to-status mapping.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gandhrekunal/scim/internal/backend"
	"github.com/gandhrekunal/scim/internal/logging"
	"github.com/gandhrekunal/scim/internal/scim"
)

// Handler wires the backend and descriptor catalogue into the HTTP
// surface. It holds no per-request state.
type Handler struct {
	backend   *backend.Backend
	catalogue *scim.Catalogue
	logger    zerolog.Logger
}

// NewHandler builds the HTTP front end.
func NewHandler(b *backend.Backend, catalogue *scim.Catalogue, logger zerolog.Logger) *Handler {
	return &Handler{backend: b, catalogue: catalogue, logger: logger}
}

// Mux builds the route table described in §4.10.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /scim/v2/{resource}/{id}", h.handleGet)
	mux.HandleFunc("POST /scim/v2/{resource}", h.handlePost)
	mux.HandleFunc("PUT /scim/v2/{resource}/{id}", h.handlePut)
	mux.HandleFunc("DELETE /scim/v2/{resource}/{id}", h.handleDelete)
	return mux
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, opID := logging.WithOperationID(r.Context())
	resourceName := r.PathValue("resource")
	id := r.PathValue("id")
	selection := scim.ParseSelection(r.URL.Query().Get("attributes"))

	resource, err := h.backend.Get(ctx, &scim.GetResourceRequest{
		ResourceName: resourceName,
		ResourceID:   id,
		Selection:    selection,
	})
	if err != nil {
		h.writeError(w, opID, err)
		return
	}
	if resource == nil {
		http.Error(w, "resource not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, encodeResource(resource))
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx, opID := logging.WithOperationID(r.Context())
	resourceName := r.PathValue("resource")

	desc, err := h.catalogue.GetResourceDescriptor(resourceName)
	if err != nil {
		h.writeError(w, opID, err)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	resource, err := decodeResource(resourceName, desc, body)
	if err != nil {
		h.writeError(w, opID, err)
		return
	}

	created, err := h.backend.Post(ctx, &scim.PostResourceRequest{
		ResourceName: resourceName,
		Resource:     resource,
		Selection:    scim.SelectAll(),
	})
	if err != nil {
		h.writeError(w, opID, err)
		return
	}
	writeJSON(w, http.StatusCreated, encodeResource(created))
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	ctx, opID := logging.WithOperationID(r.Context())
	resourceName := r.PathValue("resource")
	id := r.PathValue("id")

	desc, err := h.catalogue.GetResourceDescriptor(resourceName)
	if err != nil {
		h.writeError(w, opID, err)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	resource, err := decodeResource(resourceName, desc, body)
	if err != nil {
		h.writeError(w, opID, err)
		return
	}

	updated, err := h.backend.Put(ctx, &scim.PutResourceRequest{
		ResourceName: resourceName,
		ResourceID:   id,
		Resource:     resource,
		Selection:    scim.SelectAll(),
	})
	if err != nil {
		h.writeError(w, opID, err)
		return
	}
	if updated == nil {
		http.Error(w, "resource not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, encodeResource(updated))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, opID := logging.WithOperationID(r.Context())
	resourceName := r.PathValue("resource")
	id := r.PathValue("id")

	_, err := h.backend.Delete(ctx, &scim.DeleteResourceRequest{ResourceName: resourceName, ResourceID: id})
	if err != nil {
		h.writeError(w, opID, err)
		return
	}
	// DELETE is idempotent regardless of whether the resource existed
	// (§7: NoSuchResource on DELETE is "still 200 or 204 per SCIM").
	w.WriteHeader(http.StatusNoContent)
}

// writeError implements §7's user-visible status-code mapping.
func (h *Handler) writeError(w http.ResponseWriter, opID string, err error) {
	h.logger.Error().Str("operation_id", opID).Err(err).Msg("scim request failed")

	var unknownResource *scim.UnknownResourceError
	var incomplete *scim.IncompleteResourceError
	var malformed *scim.MalformedValueError
	var noCreator *scim.NoCreatorError
	var backendErr *scim.BackendError

	switch {
	case errors.As(err, &unknownResource):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &incomplete), errors.As(err, &malformed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &noCreator):
		// Not in §7's table verbatim: a missing creator mapper is a server
		// configuration gap, not a malformed client request, so it is
		// reported as 501 rather than 400 (see DESIGN.md).
		http.Error(w, err.Error(), http.StatusNotImplemented)
	case errors.As(err, &backendErr):
		if backendErr.Defunct {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/scim+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
