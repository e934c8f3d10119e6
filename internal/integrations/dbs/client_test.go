package dbs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/internal/integrations/providers"
	id "childminder/pkg/domain"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/certificates/001234567890":
			_, _ = w.Write([]byte(`{
				"certificate_number": "001234567890",
				"date_of_issue": "2026-08-01",
				"certificate_type": "enhanced",
				"childrens_barred_list_checked": true,
				"update_service_subscribed": false
			}`))
		case "/api/v1/certificates/999999999999":
			_, _ = w.Write([]byte(`{"certificate_number": "999999999999", "date_of_issue": "01/08/2026"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	client := New(srv.URL, "key", time.Second)

	t.Run("found", func(t *testing.T) {
		cert, err := client.Lookup(context.Background(), id.DBSNumber("001234567890"))
		require.NoError(t, err)
		assert.True(t, cert.Enhanced)
		assert.True(t, cert.BarredLists)
		assert.False(t, cert.OnUpdateService)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), cert.IssuedOn)
	})

	t.Run("unknown number", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), id.DBSNumber("111111111111"))
		assert.Equal(t, providers.ErrorNotFound, providers.GetCategory(err))
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), id.DBSNumber("999999999999"))
		assert.Equal(t, providers.ErrorBadData, providers.GetCategory(err))
	})
}
