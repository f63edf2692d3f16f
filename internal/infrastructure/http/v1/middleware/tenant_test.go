package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/tenant"
)

func newTenantTestRouter(t *testing.T) (*gin.Engine, *string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen string
	r := gin.New()
	r.Use(ErrorHandler(), Tenant())
	r.GET("/scoped", func(c *gin.Context) {
		seen = tenant.FromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r, &seen
}

func doTenantRequest(r *gin.Engine, headerValue string, setHeader bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
	if setHeader {
		req.Header.Set(TenantHeader, headerValue)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Tenant ids are opaque TEXT keys, not UUIDs. The demo tenant written by the
// seed tool is literally "demo" and must be reachable over the API.
func TestTenant_AcceptsNonUUIDIdentifiers(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "slug", header: "demo", want: "demo"},
		{name: "uuid", header: "0198f1c2-0000-7000-8000-000000000001", want: "0198f1c2-0000-7000-8000-000000000001"},
		{name: "whitespace trimmed", header: "  salon-42  ", want: "salon-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, seen := newTenantTestRouter(t)
			w := doTenantRequest(r, tt.header, true)

			require.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.want, *seen)
		})
	}
}

func TestTenant_RejectsMissingHeader(t *testing.T) {
	r, seen := newTenantTestRouter(t)
	w := doTenantRequest(r, "", false)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, *seen)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeValidation, body["code"])
}

func TestTenant_RejectsBlankHeader(t *testing.T) {
	r, seen := newTenantTestRouter(t)
	w := doTenantRequest(r, "   ", true)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, *seen)
}

func TestTenant_RejectsOverlongIdentifier(t *testing.T) {
	r, seen := newTenantTestRouter(t)
	w := doTenantRequest(r, strings.Repeat("x", maxTenantIDLength+1), true)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, *seen)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeValidation, body["code"])
}
