package postcode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "childminder/pkg/domain"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("postcode") != "SW1A 1AA" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"results":[
			{"DPA":{"BUILDING_NUMBER":"10","THOROUGHFARE_NAME":"DOWNING STREET","POST_TOWN":"LONDON","POSTCODE":"SW1A 1AA"}},
			{"DPA":{"BUILDING_NAME":"THE LODGE","BUILDING_NUMBER":"2","THOROUGHFARE_NAME":"MALL","POST_TOWN":"LONDON","POSTCODE":"SW1A 1AA"}}
		]}`))
	}))
	defer srv.Close()
	c := New(srv.URL, "k", time.Second)

	addrs, err := c.Lookup(context.Background(), id.Postcode("SW1A 1AA"))
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, "10 DOWNING STREET", addrs[0].Line1)
	assert.Equal(t, "THE LODGE", addrs[1].Line1)
	assert.Equal(t, "2 MALL", addrs[1].Line2)

	none, err := c.Lookup(context.Background(), id.Postcode("ZZ1 1ZZ"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
