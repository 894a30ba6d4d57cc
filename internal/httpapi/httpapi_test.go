package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gandhrekunal/scim/internal/backend"
	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/mapper"
	"github.com/gandhrekunal/scim/internal/registry"
	"github.com/gandhrekunal/scim/internal/scim"
	"github.com/gandhrekunal/scim/internal/testdirectory"
)

const baseDN = "dc=example,dc=com"

func newTestHandler(t *testing.T) (*Handler, *testdirectory.Directory) {
	t.Helper()

	catalogue := scim.NewCatalogue()
	catalogue.MustRegister(mapper.UserResourceDescriptor())

	facade := registry.NewFacade()
	require.NoError(t, facade.Register(mapper.NewUserMapper()))

	dir := testdirectory.New()
	b := backend.NewBackend(catalogue, facade, dir, baseDN, nil)
	return NewHandler(b, catalogue, zerolog.Nop()), dir
}

func TestHandleGetNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/scim/v2/User/uid=ghost,dc=example,dc=com", nil)
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePostAndGet(t *testing.T) {
	h, _ := newTestHandler(t)

	body := map[string]any{
		"userName": "bjensen",
		"name": map[string]any{
			"givenName":  "Barbara",
			"familyName": "Jensen",
		},
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	postReq := httptest.NewRequest(http.MethodPost, "/scim/v2/User", bytes.NewReader(payload))
	postRec := httptest.NewRecorder()
	h.Mux().ServeHTTP(postRec, postReq)

	require.Equal(t, http.StatusCreated, postRec.Code)

	var created map[string]any
	require.NoError(t, json.NewDecoder(postRec.Body).Decode(&created))
	assert.Equal(t, "uid=bjensen,"+baseDN, created["id"])

	getReq := httptest.NewRequest(http.MethodGet, "/scim/v2/User/uid=bjensen,"+baseDN, nil)
	getRec := httptest.NewRecorder()
	h.Mux().ServeHTTP(getRec, getReq)

	require.Equal(t, http.StatusOK, getRec.Code)

	var fetched map[string]any
	require.NoError(t, json.NewDecoder(getRec.Body).Decode(&fetched))
	assert.Equal(t, "uid=bjensen,"+baseDN, fetched["id"])
}

func TestHandleDeleteIsIdempotent(t *testing.T) {
	h, dir := newTestHandler(t)

	dn := "uid=bjensen," + baseDN
	dir.Seed(directory.NewEntry(dn))

	first := httptest.NewRequest(http.MethodDelete, "/scim/v2/User/"+dn, nil)
	firstRec := httptest.NewRecorder()
	h.Mux().ServeHTTP(firstRec, first)
	assert.Equal(t, http.StatusNoContent, firstRec.Code)

	second := httptest.NewRequest(http.MethodDelete, "/scim/v2/User/"+dn, nil)
	secondRec := httptest.NewRecorder()
	h.Mux().ServeHTTP(secondRec, second)
	assert.Equal(t, http.StatusNoContent, secondRec.Code)
}

func TestHandleGetUnknownResource(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/scim/v2/Widget/abc", nil)
	rec := httptest.NewRecorder()
	h.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "Widget")
}
