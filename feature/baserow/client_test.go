package baserow

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"roster-sync/core/rest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{URL: "http://localhost"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrTableRequired)

	client, err := NewClient(Config{URL: "http://localhost", TableID: 9, PageSize: 1000}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, client.pageSize)
}

func TestLoadRows_Paginated(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token db-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/database/rows/table/42/", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("user_field_names"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "":
			assert.Equal(t, "2", r.URL.Query().Get("size"))
			fmt.Fprintf(w, `{"count": 3, "next": "%s/api/database/rows/table/42/?user_field_names=true&size=2&page=2", "results": [
				{"id": 1, "Email": "a@x.com", "Team": {"id": 5, "value": "Core"}},
				{"id": 2, "Email": "b@x.com", "Team": null}
			]}`, server.URL)
		case "2":
			fmt.Fprint(w, `{"count": 3, "next": null, "results": [
				{"id": 1500000, "Email": "c@x.com"}
			]}`)
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{URL: server.URL, APIKey: "db-token", TableID: 42, PageSize: 2}, zap.NewNop())
	require.NoError(t, err)

	rows, err := client.LoadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "1", rows[0].ID)
	assert.Equal(t, "a@x.com", rows[0].Cells["Email"])
	assert.Equal(t, map[string]any{"id": float64(5), "value": "Core"}, rows[0].Cells["Team"])
	assert.Equal(t, "2", rows[1].ID)
	assert.Equal(t, "1500000", rows[2].ID)
}

func TestLoadRows_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "ERROR_INVALID_TOKEN", "detail": "The token is invalid."}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{URL: server.URL, APIKey: "bad", TableID: 1}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.LoadRows(context.Background())
	require.Error(t, err)

	apiErr, ok := rest.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "ERROR_INVALID_TOKEN", apiErr.Code)
}
