package mdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"astrolink-client/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Path  string
	Query map[string]string
}

func newTestClient(t *testing.T, responses ...string) (*Client, *[]recordedRequest) {
	t.Helper()
	requests := &[]recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Path: r.URL.Path, Query: map[string]string{}}
		for key := range r.URL.Query() {
			rec.Query[key] = r.URL.Query().Get(key)
		}
		index := len(*requests)
		*requests = append(*requests, rec)

		w.Header().Set("Content-Type", "application/json")
		if index < len(responses) {
			w.Write([]byte(responses[index]))
		} else {
			w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(server.Close)

	c := client.NewClient(strings.TrimPrefix(server.URL, "http://"))
	return NewClient(c, "simulator"), requests
}

func TestListParameters_FollowsContinuationToken(t *testing.T) {
	mdb, requests := newTestClient(t,
		`{"parameters": [
			{"name": "BatteryVoltage1", "qualifiedName": "/YSS/SIMULATOR/BatteryVoltage1", "dataSource": "TELEMETERED"},
			{"name": "BatteryVoltage2", "qualifiedName": "/YSS/SIMULATOR/BatteryVoltage2", "dataSource": "TELEMETERED"}
		], "continuationToken": "page2", "totalSize": 3}`,
		`{"parameters": [
			{"name": "Sum", "qualifiedName": "/YSS/SIMULATOR/Sum", "dataSource": "DERIVED"}
		], "totalSize": 3}`,
	)

	parameters, err := mdb.ListParameters(context.Background(), ListParametersOptions{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, parameters, 3)
	assert.Equal(t, "/YSS/SIMULATOR/BatteryVoltage1", parameters[0].QualifiedName())
	assert.Equal(t, "/YSS/SIMULATOR/Sum", parameters[2].QualifiedName())

	require.Len(t, *requests, 2)
	first := (*requests)[0]
	assert.Equal(t, "/api/mdb/simulator/parameters", first.Path)
	assert.Equal(t, "2", first.Query["limit"])
	_, hasNext := first.Query["next"]
	assert.False(t, hasNext)

	second := (*requests)[1]
	assert.Equal(t, "page2", second.Query["next"])
	assert.Equal(t, "2", second.Query["limit"])
}

func TestListParameters_TypeFilter(t *testing.T) {
	mdb, requests := newTestClient(t, `{}`)

	_, err := mdb.ListParameters(context.Background(), ListParametersOptions{ParameterType: "telemetered"})
	require.NoError(t, err)
	assert.Equal(t, "telemetered", (*requests)[0].Query["type"])
}

func TestGetParameter(t *testing.T) {
	mdb, requests := newTestClient(t, `{
		"name": "BatteryVoltage1",
		"qualifiedName": "/YSS/SIMULATOR/BatteryVoltage1",
		"shortDescription": "Battery voltage",
		"alias": [{"namespace": "MDB:OPS Name", "name": "SIMULATOR_BatteryVoltage1"}],
		"dataSource": "TELEMETERED",
		"type": {"engType": "integer", "unitSet": [{"unit": "V"}]}
	}`)

	parameter, err := mdb.GetParameter(context.Background(), "/YSS/SIMULATOR/BatteryVoltage1")
	require.NoError(t, err)
	assert.Equal(t, "/api/mdb/simulator/parameters/YSS/SIMULATOR/BatteryVoltage1", (*requests)[0].Path)

	assert.Equal(t, "BatteryVoltage1", parameter.Name())
	assert.Equal(t, "/YSS/SIMULATOR/BatteryVoltage1", parameter.QualifiedName())

	description, ok := parameter.Description()
	require.True(t, ok)
	assert.Equal(t, "Battery voltage", description)

	source, ok := parameter.DataSource()
	require.True(t, ok)
	assert.Equal(t, "TELEMETERED", source)

	engType, ok := parameter.EngineeringType()
	require.True(t, ok)
	assert.Equal(t, "integer", engType)
	assert.Equal(t, []string{"V"}, parameter.Units())

	require.Len(t, parameter.Aliases(), 1)
	assert.Equal(t, "MDB:OPS Name", parameter.Aliases()[0].Namespace)
}

func TestGetParameter_AbsentOptionalFields(t *testing.T) {
	mdb, _ := newTestClient(t, `{"name": "p", "qualifiedName": "/a/p"}`)

	parameter, err := mdb.GetParameter(context.Background(), "/a/p")
	require.NoError(t, err)

	_, ok := parameter.Description()
	assert.False(t, ok)
	_, ok = parameter.DataSource()
	assert.False(t, ok)
	_, ok = parameter.EngineeringType()
	assert.False(t, ok)
	assert.Empty(t, parameter.Units())
}

func TestGetParameter_BareNameRejected(t *testing.T) {
	mdb, requests := newTestClient(t)

	_, err := mdb.GetParameter(context.Background(), "BatteryVoltage1")
	require.Error(t, err)
	assert.Empty(t, *requests)
}

func TestListContainers_FollowsContinuationToken(t *testing.T) {
	mdb, requests := newTestClient(t,
		`{"containers": [{"name": "DHS", "qualifiedName": "/YSS/SIMULATOR/DHS"}],
		  "continuationToken": "page2"}`,
		`{"containers": [{"name": "Power", "qualifiedName": "/YSS/SIMULATOR/Power"}]}`,
	)

	containers, err := mdb.ListContainers(context.Background(), ListContainersOptions{})
	require.NoError(t, err)
	require.Len(t, containers, 2)
	assert.Equal(t, "/YSS/SIMULATOR/DHS", containers[0].QualifiedName())

	require.Len(t, *requests, 2)
	assert.Equal(t, "/api/mdb/simulator/containers", (*requests)[0].Path)
	assert.Equal(t, "page2", (*requests)[1].Query["next"])
}

func TestGetContainer(t *testing.T) {
	mdb, requests := newTestClient(t, `{
		"name": "Power",
		"qualifiedName": "/YSS/SIMULATOR/Power",
		"maxInterval": 1500,
		"baseContainer": "/YSS/SIMULATOR/DHS"
	}`)

	container, err := mdb.GetContainer(context.Background(), "YSS/Power")
	require.NoError(t, err)
	assert.Equal(t, "/api/mdb/simulator/containers/YSS/Power", (*requests)[0].Path)

	assert.Equal(t, "Power", container.Name())
	interval, ok := container.MaxInterval()
	require.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, interval)

	base, ok := container.BaseContainer()
	require.True(t, ok)
	assert.Equal(t, "/YSS/SIMULATOR/DHS", base)

	short, err2 := mdb.GetContainer(context.Background(), "bare")
	assert.Nil(t, short)
	assert.Error(t, err2)
}
