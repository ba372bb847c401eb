package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sftgate/internal/platform/tablestore"
	"sftgate/internal/provisioning"
	"sftgate/internal/registry/service"
	"sftgate/internal/registry/store"
	"sftgate/pkg/platform/validation"
)

func newAdminRouter(t *testing.T) (http.Handler, *provisioning.MemoryQueue) {
	t.Helper()
	queue := provisioning.NewMemoryQueue()
	svc := service.New(store.NewTable(tablestore.NewMemory()), queue, "sft-")
	h := New(svc, slog.Default())

	r := chi.NewRouter()
	r.Route("/v1/admin", h.Register)
	return r, queue
}

func createThirdParty(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/third-parties/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateEndpoint(t *testing.T) {
	router, queue := newAdminRouter(t)

	rec := createThirdParty(t, router, `{"company_name":"Acme Corp","contact_email":"ops@acme.test","enable_automation":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID            string `json:"id"`
		ContainerName string `json:"container_name"`
		Status        string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "sft-acme-corp", resp.ContainerName)
	assert.Equal(t, "provisioning", resp.Status)
	assert.Equal(t, 1, queue.Len(), "creation must enqueue a provisioning work item")

	assert.NotContains(t, rec.Body.String(), "credential", "secrets never leave the service boundary")
	assert.NotContains(t, rec.Body.String(), "identity_ref")
}

func TestCreateEndpoint_Validation(t *testing.T) {
	router, _ := newAdminRouter(t)

	rec := createThirdParty(t, router, `{"contact_email":"ops@acme.test"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "company_name is required")

	long := strings.Repeat("a", validation.MaxCompanyNameLength+1)
	rec = createThirdParty(t, router, `{"company_name":"`+long+`","contact_email":"ops@acme.test"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "company_name exceeds max length")
}

func TestCreateEndpoint_ContainerConflict(t *testing.T) {
	router, _ := newAdminRouter(t)

	require.Equal(t, http.StatusCreated, createThirdParty(t, router, `{"company_name":"Acme Corp","contact_email":"a@b.test"}`).Code)
	rec := createThirdParty(t, router, `{"company_name":"ACME CORP","contact_email":"c@d.test"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetAndListEndpoints(t *testing.T) {
	router, _ := newAdminRouter(t)
	rec := createThirdParty(t, router, `{"company_name":"Acme Corp","contact_email":"ops@acme.test"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/v1/admin/third-parties/"+created.ID, nil))
	require.Equal(t, http.StatusOK, getRec.Code)
	assert.Contains(t, getRec.Body.String(), "Acme Corp")

	missingRec := httptest.NewRecorder()
	router.ServeHTTP(missingRec, httptest.NewRequest(http.MethodGet, "/v1/admin/third-parties/tp-missing", nil))
	assert.Equal(t, http.StatusNotFound, missingRec.Code)

	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/v1/admin/third-parties/", nil))
	require.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), created.ID)
}

func TestUpdateEndpoint_ContainerImmutable(t *testing.T) {
	router, _ := newAdminRouter(t)
	rec := createThirdParty(t, router, `{"company_name":"Acme Corp","contact_email":"ops@acme.test"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID            string `json:"id"`
		ContainerName string `json:"container_name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/third-parties/"+created.ID,
		strings.NewReader(`{"company_name":"Completely Different Name"}`))
	req.Header.Set("Content-Type", "application/json")
	updRec := httptest.NewRecorder()
	router.ServeHTTP(updRec, req)
	require.Equal(t, http.StatusOK, updRec.Code)

	var updated struct {
		CompanyName   string `json:"company_name"`
		ContainerName string `json:"container_name"`
	}
	require.NoError(t, json.Unmarshal(updRec.Body.Bytes(), &updated))
	assert.Equal(t, "Completely Different Name", updated.CompanyName)
	assert.Equal(t, created.ContainerName, updated.ContainerName)
}

func TestDeprovisionEndpoint(t *testing.T) {
	router, queue := newAdminRouter(t)
	rec := createThirdParty(t, router, `{"company_name":"Acme Corp","contact_email":"ops@acme.test"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	depRec := httptest.NewRecorder()
	router.ServeHTTP(depRec, httptest.NewRequest(http.MethodPost, "/v1/admin/third-parties/"+created.ID+"/deprovision", nil))
	require.Equal(t, http.StatusAccepted, depRec.Code)

	// Still provisioning, so the request is a recorded no-op.
	assert.Contains(t, depRec.Body.String(), "provisioning")
	assert.Equal(t, 1, queue.Len(), "no teardown work item for a tenant that never activated")
}
