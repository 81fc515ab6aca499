package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"astrolink-client/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer 启动一个假服务器并返回指向它的客户端
func newTestServer(t *testing.T, handler http.HandlerFunc) (*client.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	address := strings.TrimPrefix(server.URL, "http://")
	return client.NewClient(address), server
}

func TestNewClient_DefaultPort(t *testing.T) {
	c := client.NewClient("mcs.example.com")
	assert.Equal(t, "mcs.example.com:8090", c.Address())
}

func TestNewClient_ExplicitPortKept(t *testing.T) {
	c := client.NewClient("mcs.example.com:9999")
	assert.Equal(t, "mcs.example.com:9999", c.Address())
}

func TestWebSocketURL(t *testing.T) {
	c := client.NewClient("mcs.example.com")
	assert.Equal(t, "ws://mcs.example.com:8090/_websocket/simulator", c.WebSocketURL("simulator"))

	secure := client.NewClient("mcs.example.com", client.WithTLS())
	assert.Equal(t, "wss://mcs.example.com:8090/_websocket/simulator", secure.WebSocketURL("simulator"))
}

func TestGet_NotFoundMapsToSentinel(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"type":"NotFoundException","msg":"no such link"}`)
	})

	err := c.Get(context.Background(), "/links/sim/nope", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrNotFound))

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "NotFoundException", apiErr.Type)
	assert.Equal(t, "no such link", apiErr.Message)
}

func TestGet_UnauthorizedMapsToSentinel(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"type":"UnauthorizedException","msg":"token expired"}`)
	})

	err := c.Get(context.Background(), "/links/sim", nil, nil)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))
	assert.False(t, errors.Is(err, client.ErrNotFound))
}

func TestGet_ServerErrorNotASentinel(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"type":"InternalServerErrorException","msg":"boom"}`)
	})

	err := c.Get(context.Background(), "/links/sim", nil, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, client.ErrNotFound))
	assert.False(t, errors.Is(err, client.ErrUnauthorized))

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestGet_TransportFailureIsConnectionError(t *testing.T) {
	// 端口未监听，请求必然失败
	c := client.NewClient("127.0.0.1:1")
	err := c.Get(context.Background(), "/links/sim", nil, nil)
	require.Error(t, err)

	var connErr *client.ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, "127.0.0.1:1", connErr.Address)

	var apiErr *client.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestGet_DecodesBodyWithoutContentType(t *testing.T) {
	// 服务器不设 Content-Type 时响应会被嗅探成 text/plain，结果仍须按 JSON 解码
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"link":[{"instance":"simulator","name":"tm_realtime","dataInCount":7}]}`)
	})

	links, err := c.ListDataLinks(context.Background(), "simulator")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "tm_realtime", links[0].Name())
	assert.Equal(t, int64(7), links[0].DataInCount())
}

func TestListDataLinks(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/links/simulator", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"link":[
			{"instance":"simulator","name":"tm_realtime","status":"OK","dataInCount":1234},
			{"instance":"simulator","name":"tc_realtime","disabled":true}
		]}`)
	})

	links, err := c.ListDataLinks(context.Background(), "simulator")
	require.NoError(t, err)
	require.Len(t, links, 2)

	assert.Equal(t, "tm_realtime", links[0].Name())
	assert.True(t, links[0].Enabled())
	status, ok := links[0].Status()
	require.True(t, ok)
	assert.Equal(t, "OK", status)
	assert.Equal(t, int64(1234), links[0].DataInCount())

	assert.False(t, links[1].Enabled())
	_, ok = links[1].Status()
	assert.False(t, ok)
	assert.Equal(t, int64(0), links[1].DataInCount())
}

func TestEnableDataLink_SendsPatch(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.EnableDataLink(context.Background(), "simulator", "tm_realtime"))
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/links/simulator/tm_realtime", gotPath)
	assert.Equal(t, "enabled", gotBody["state"])

	require.NoError(t, c.DisableDataLink(context.Background(), "simulator", "tm_realtime"))
	assert.Equal(t, "disabled", gotBody["state"])
}
