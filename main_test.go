package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	re := &core.RequestEvent{}
	re.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	re.Response = rec

	require.NoError(t, securityHeadersMiddleware(re))

	h := rec.Header()
	require.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", h.Get("X-Frame-Options"))
	require.Contains(t, h.Get("Content-Security-Policy"), "script-src 'self'")
	require.NotEmpty(t, h.Get("Strict-Transport-Security"))
}

func TestStoreKind(t *testing.T) {
	require.Equal(t, "pocketbase", storeKind(utils.StorePocketBase))
	require.Equal(t, "memory", storeKind(utils.StoreMemory))
	require.Equal(t, "mongodb", storeKind("mongodb://localhost:27017"))
}
