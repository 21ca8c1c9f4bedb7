package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinami/bancho-backend/internal/packet"
	"github.com/kirinami/bancho-backend/internal/registry"
)

func TestCreateAndListMatches(t *testing.T) {
	reg := registry.New(nil)
	srv := httptest.NewServer(SetupRoutes(reg, 64, nil))
	defer srv.Close()

	body := `{"name":"my room","host_id":7,"password":"pw","beatmap_id":42,"beatmap_name":"some song"}`
	resp, err := http.Post(srv.URL+"/matches", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID int32 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, int32(1), created.ID)

	resp, err = http.Get(srv.URL + "/matches")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []packet.MatchData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "my room", listed[0].Name)
	assert.Equal(t, int32(7), listed[0].HostID)
	require.NotNil(t, listed[0].Password, "listing signals a password exists")
	assert.Empty(t, *listed[0].Password, "but never leaks it")
}

func TestCreateMatchRejectsBadBody(t *testing.T) {
	reg := registry.New(nil)
	srv := httptest.NewServer(SetupRoutes(reg, 64, nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/matches", "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/matches", "application/json", strings.NewReader(`{"host_id":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	reg := registry.New(nil)
	srv := httptest.NewServer(SetupRoutes(reg, 64, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
