package tmtc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"astrolink-client/client"
	"astrolink-client/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64p(v float64) *float64 { return &v }

// recordedRequest 假服务器捕获的一次请求
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]interface{}
}

// newTestProcessor 启动假服务器并返回指向它的处理器客户端。
// 每个请求都被捕获进 requests，响应体按调用顺序从 responses 取。
func newTestProcessor(t *testing.T, responses ...string) (*ProcessorClient, *[]recordedRequest) {
	t.Helper()
	requests := &[]recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
		}
		for key := range r.URL.Query() {
			rec.Query[key] = r.URL.Query().Get(key)
		}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			json.Unmarshal(raw, &rec.Body)
		}
		index := len(*requests)
		*requests = append(*requests, rec)

		w.Header().Set("Content-Type", "application/json")
		if index < len(responses) {
			io.WriteString(w, responses[index])
		} else {
			io.WriteString(w, `{}`)
		}
	}))
	t.Cleanup(server.Close)

	c := client.NewClient(strings.TrimPrefix(server.URL, "http://"))
	return NewProcessorClient(c, "simulator", "realtime"), requests
}

func TestGetParameterValue(t *testing.T) {
	p, requests := newTestProcessor(t, `{
		"id": {"name": "/YSS/SIMULATOR/BatteryVoltage1"},
		"engValue": {"type": 1, "doubleValue": 7.5},
		"generationTimeUTC": "2023-11-14T22:13:20.000Z"
	}`)

	pv, err := p.GetParameterValue(context.Background(), "/YSS/SIMULATOR/BatteryVoltage1", true, 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, pv)
	assert.Equal(t, "/YSS/SIMULATOR/BatteryVoltage1", pv.Name())
	v, ok := pv.EngValue()
	require.True(t, ok)
	assert.Equal(t, 7.5, v)

	require.Len(t, *requests, 1)
	rec := (*requests)[0]
	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/api/processors/simulator/realtime/parameters/YSS/SIMULATOR/BatteryVoltage1", rec.Path)
	assert.Equal(t, "true", rec.Query["fromCache"])
	assert.Equal(t, "5000", rec.Query["timeout"])
}

func TestGetParameterValue_NoValue(t *testing.T) {
	// 服务器没有该参数的值时只回一个 id
	p, _ := newTestProcessor(t, `{"id": {"name": "/YSS/SIMULATOR/BatteryVoltage1"}}`)

	pv, err := p.GetParameterValue(context.Background(), "/YSS/SIMULATOR/BatteryVoltage1", false, time.Second)
	require.NoError(t, err)
	assert.Nil(t, pv)
}

func TestGetParameterValue_AliasAdapted(t *testing.T) {
	p, requests := newTestProcessor(t, `{"id": {"name": "param1"}}`)

	_, err := p.GetParameterValue(context.Background(), "MDB/param1", true, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "/api/processors/simulator/realtime/parameters/MDB/param1", (*requests)[0].Path)
}

func TestGetParameterValue_BareNameRejected(t *testing.T) {
	p, requests := newTestProcessor(t)

	_, err := p.GetParameterValue(context.Background(), "param1", true, time.Second)
	require.Error(t, err)
	assert.Empty(t, *requests)
}

func TestGetParameterValues_OrderWithGaps(t *testing.T) {
	// 响应乱序且缺第二个参数：结果与请求同长同序，缺口为 nil
	p, requests := newTestProcessor(t, `{"value": [
		{"id": {"name": "/a/third"}, "engValue": {"type": 1, "doubleValue": 3}},
		{"id": {"name": "/a/first"}, "engValue": {"type": 1, "doubleValue": 1}}
	]}`)

	values, err := p.GetParameterValues(context.Background(),
		[]string{"/a/first", "/a/second", "/a/third"}, true, time.Second)
	require.NoError(t, err)
	require.Len(t, values, 3)

	require.NotNil(t, values[0])
	assert.Equal(t, "/a/first", values[0].Name())
	assert.Nil(t, values[1])
	require.NotNil(t, values[2])
	assert.Equal(t, "/a/third", values[2].Name())

	rec := (*requests)[0]
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/processors/simulator/realtime/parameters/mget", rec.Path)
	assert.Equal(t, "true", rec.Query["fromCache"])
	ids := rec.Body["id"].([]interface{})
	require.Len(t, ids, 3)
	assert.Equal(t, "/a/second", ids[1].(map[string]interface{})["name"])
}

func TestSetParameterValue(t *testing.T) {
	p, requests := newTestProcessor(t)

	require.NoError(t, p.SetParameterValue(context.Background(), "/a/enabled", true))

	rec := (*requests)[0]
	assert.Equal(t, http.MethodPut, rec.Method)
	assert.Equal(t, "/api/processors/simulator/realtime/parameters/a/enabled", rec.Path)
	assert.Equal(t, float64(9), rec.Body["type"]) // BOOLEAN
	assert.Equal(t, true, rec.Body["booleanValue"])
}

func TestSetParameterValues(t *testing.T) {
	p, requests := newTestProcessor(t)

	err := p.SetParameterValues(context.Background(), map[string]interface{}{
		"/a/gain": 7.5,
	})
	require.NoError(t, err)

	rec := (*requests)[0]
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/processors/simulator/realtime/parameters/mset", rec.Path)
	reqs := rec.Body["request"].([]interface{})
	require.Len(t, reqs, 1)
	first := reqs[0].(map[string]interface{})
	assert.Equal(t, "/a/gain", first["id"].(map[string]interface{})["name"])
	assert.Equal(t, 7.5, first["value"].(map[string]interface{})["doubleValue"])
}

func TestIssueCommand(t *testing.T) {
	response := `{
		"commandQueueEntry": {
			"cmdId": {
				"generationTime": 1700000000000,
				"origin": "test-host",
				"sequenceNumber": 1,
				"commandName": "/YSS/SIMULATOR/SWITCH_VOLTAGE_ON"
			},
			"queueName": "default",
			"username": "admin",
			"generationTimeUTC": "2023-11-14T22:13:20.000Z",
			"source": "SWITCH_VOLTAGE_ON(voltage_num: 1)"
		},
		"hex": "1864779e",
		"binary": "GGR3ng=="
	}`
	p, requests := newTestProcessor(t, response, response)

	ic, err := p.IssueCommand(context.Background(), "/YSS/SIMULATOR/SWITCH_VOLTAGE_ON", IssueCommandOptions{
		Args:    map[string]interface{}{"voltage_num": 1},
		Comment: "routine check",
	})
	require.NoError(t, err)

	rec := (*requests)[0]
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/processors/simulator/realtime/commands/YSS/SIMULATOR/SWITCH_VOLTAGE_ON", rec.Path)
	hostname, _ := os.Hostname()
	assert.Equal(t, hostname, rec.Body["origin"])
	assert.Equal(t, false, rec.Body["dryRun"])
	assert.Equal(t, "routine check", rec.Body["comment"])
	assignments := rec.Body["assignment"].([]interface{})
	require.Len(t, assignments, 1)
	first := assignments[0].(map[string]interface{})
	assert.Equal(t, "voltage_num", first["name"])
	assert.Equal(t, "1", first["value"]) // 赋值统一按字符串下发
	firstSeq := rec.Body["sequenceNumber"].(float64)

	// 响应的解析
	assert.Equal(t, "/YSS/SIMULATOR/SWITCH_VOLTAGE_ON", ic.Name())
	queue, ok := ic.Queue()
	require.True(t, ok)
	assert.Equal(t, "default", queue)
	hex, ok := ic.Hex()
	require.True(t, ok)
	assert.Equal(t, "1864779e", hex)
	assert.Equal(t, []byte{0x18, 0x64, 0x77, 0x9e}, ic.Binary())

	// 序号由进程级计数器分配，逐次递增
	_, err = p.IssueCommand(context.Background(), "/YSS/SIMULATOR/SWITCH_VOLTAGE_ON", IssueCommandOptions{DryRun: true})
	require.NoError(t, err)
	second := (*requests)[1]
	assert.Equal(t, firstSeq+1, second.Body["sequenceNumber"].(float64))
	assert.Equal(t, true, second.Body["dryRun"])
	_, hasComment := second.Body["comment"]
	assert.False(t, hasComment)
}

func TestListAlarms(t *testing.T) {
	p, requests := newTestProcessor(t, `{"alarm": [
		{
			"seqNum": 5,
			"type": 2,
			"triggerValue": {"id": {"name": "/a/b"}, "engValue": {"type": 1, "doubleValue": 99}},
			"violations": 3
		}
	]}`)

	start := time.UnixMilli(1700000000000).UTC()
	stop := start.Add(time.Hour)
	alarms, err := p.ListAlarms(context.Background(), &start, &stop)
	require.NoError(t, err)
	require.Len(t, alarms, 1)
	assert.Equal(t, "/a/b", alarms[0].Name())
	seq, ok := alarms[0].SequenceNumber()
	require.True(t, ok)
	assert.Equal(t, int32(5), seq)

	rec := (*requests)[0]
	assert.Equal(t, "/api/processors/simulator/realtime/alarms", rec.Path)
	assert.Equal(t, "asc", rec.Query["order"])
	assert.Equal(t, "2023-11-14T22:13:20.000Z", rec.Query["start"])
	assert.Equal(t, "2023-11-14T23:13:20.000Z", rec.Query["stop"])
}

func TestAcknowledgeAlarm(t *testing.T) {
	p, requests := newTestProcessor(t)

	seq := int32(5)
	alarm, err := newAlarm(&protocol.AlarmDataMsg{
		SeqNum:       &seq,
		TriggerValue: alarmValueMsg("", "/a/b", 99),
	})
	require.NoError(t, err)

	require.NoError(t, p.AcknowledgeAlarm(context.Background(), alarm, "known issue"))

	rec := (*requests)[0]
	assert.Equal(t, http.MethodPut, rec.Method)
	assert.Equal(t, "/api/processors/simulator/realtime/parameters/a/b/alarms/5", rec.Path)
	assert.Equal(t, "acknowledged", rec.Body["state"])
	assert.Equal(t, "known issue", rec.Body["comment"])
}

func TestAcknowledgeAlarm_NoSequenceNumber(t *testing.T) {
	p, requests := newTestProcessor(t)

	alarm, err := newAlarm(&protocol.AlarmDataMsg{
		TriggerValue: alarmValueMsg("", "/a/b", 99),
	})
	require.NoError(t, err)

	err = p.AcknowledgeAlarm(context.Background(), alarm, "")
	require.Error(t, err)
	assert.Empty(t, *requests)
}

func TestSetDefaultCalibrator_Polynomial(t *testing.T) {
	p, requests := newTestProcessor(t)

	calibrator := NewPolynomialCalibrator("", 0.001, 2)
	require.NoError(t, p.SetDefaultCalibrator(context.Background(), "/a/b", &calibrator))

	rec := (*requests)[0]
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/mdb/simulator/realtime/parameters//a/b", rec.Path)
	assert.Equal(t, float64(0), rec.Body["action"]) // SET_DEFAULT_CALIBRATOR
	def := rec.Body["defaultCalibrator"].(map[string]interface{})
	assert.Equal(t, float64(0), def["type"]) // polynomial
	coefficients := def["polynomialCalibrator"].(map[string]interface{})["coefficient"].([]interface{})
	assert.Equal(t, []interface{}{0.001, float64(2)}, coefficients)
}

func TestSetDefaultCalibrator_Spline(t *testing.T) {
	p, requests := newTestProcessor(t)

	calibrator := NewSplineCalibrator("",
		SplinePoint{Raw: 0, Calibrated: 0},
		SplinePoint{Raw: 100, Calibrated: 1.5},
	)
	require.NoError(t, p.SetDefaultCalibrator(context.Background(), "/a/b", &calibrator))

	def := (*requests)[0].Body["defaultCalibrator"].(map[string]interface{})
	assert.Equal(t, float64(1), def["type"]) // spline
	points := def["splineCalibrator"].(map[string]interface{})["point"].([]interface{})
	require.Len(t, points, 2)
	last := points[1].(map[string]interface{})
	assert.Equal(t, float64(100), last["raw"])
	assert.Equal(t, 1.5, last["calibrated"])
}

func TestSetDefaultCalibrator_UnknownTypeRejected(t *testing.T) {
	p, requests := newTestProcessor(t)

	calibrator := Calibrator{Type: "quadratic"}
	err := p.SetDefaultCalibrator(context.Background(), "/a/b", &calibrator)
	require.Error(t, err)
	assert.Empty(t, *requests)
}

func TestSetCalibrators_ContextVsDefault(t *testing.T) {
	p, requests := newTestProcessor(t)

	err := p.SetCalibrators(context.Background(), "/a/b", []Calibrator{
		NewPolynomialCalibrator("mode==1", 0, 2),
		NewPolynomialCalibrator("", 0, 1),
	})
	require.NoError(t, err)

	rec := (*requests)[0]
	assert.Equal(t, float64(1), rec.Body["action"]) // SET_CALIBRATORS
	contexts := rec.Body["contextCalibrator"].([]interface{})
	require.Len(t, contexts, 1)
	assert.Equal(t, "mode==1", contexts[0].(map[string]interface{})["context"])
	def := rec.Body["defaultCalibrator"].(map[string]interface{})
	assert.Equal(t, float64(0), def["type"])
}

func TestClearCalibrators(t *testing.T) {
	p, requests := newTestProcessor(t)

	require.NoError(t, p.ClearCalibrators(context.Background(), "/a/b"))

	// 两步：先清默认校准器，再清条件校准器组
	require.Len(t, *requests, 2)
	first := (*requests)[0]
	assert.Equal(t, float64(0), first.Body["action"])
	_, hasDefault := first.Body["defaultCalibrator"]
	assert.False(t, hasDefault)
	second := (*requests)[1]
	assert.Equal(t, float64(1), second.Body["action"])
	_, hasContext := second.Body["contextCalibrator"]
	assert.False(t, hasContext)
}

func TestResetCalibrators(t *testing.T) {
	p, requests := newTestProcessor(t)

	require.NoError(t, p.ResetCalibrators(context.Background(), "/a/b"))
	assert.Equal(t, float64(2), (*requests)[0].Body["action"]) // RESET_CALIBRATORS
}

func TestSetDefaultAlarmRanges(t *testing.T) {
	p, requests := newTestProcessor(t)

	err := p.SetDefaultAlarmRanges(context.Background(), "/a/b", &RangeSet{
		Watch:    Range(0, 100),
		Critical: &FloatRange{Hi: f64p(120)},
	})
	require.NoError(t, err)

	rec := (*requests)[0]
	assert.Equal(t, float64(3), rec.Body["action"]) // SET_DEFAULT_ALARMS
	def := rec.Body["defaultAlarm"].(map[string]interface{})
	assert.Equal(t, float64(1), def["minViolations"]) // 未设置时按 1 下发
	ranges := def["staticAlarmRange"].([]interface{})
	require.Len(t, ranges, 2)

	watch := ranges[0].(map[string]interface{})
	assert.Equal(t, float64(1), watch["level"]) // WATCH
	// 0 是合法边界，不能丢
	assert.Equal(t, float64(0), watch["minExclusive"])
	assert.Equal(t, float64(100), watch["maxExclusive"])

	critical := ranges[1].(map[string]interface{})
	assert.Equal(t, float64(4), critical["level"]) // CRITICAL
	_, hasLo := critical["minExclusive"]
	assert.False(t, hasLo) // 单边区间不带另一侧
	assert.Equal(t, float64(120), critical["maxExclusive"])
}

func TestSetAlarmRangeSets_ContextVsDefault(t *testing.T) {
	p, requests := newTestProcessor(t)

	err := p.SetAlarmRangeSets(context.Background(), "/a/b", []RangeSet{
		{Context: "mode==1", Severe: Range(-1, 1), MinViolations: 3},
		{Watch: Range(0, 10)},
	})
	require.NoError(t, err)

	rec := (*requests)[0]
	assert.Equal(t, float64(4), rec.Body["action"]) // SET_ALARMS
	contexts := rec.Body["contextAlarm"].([]interface{})
	require.Len(t, contexts, 1)
	ctxAlarm := contexts[0].(map[string]interface{})
	assert.Equal(t, "mode==1", ctxAlarm["context"])
	assert.Equal(t, float64(3), ctxAlarm["alarm"].(map[string]interface{})["minViolations"])
	def := rec.Body["defaultAlarm"].(map[string]interface{})
	assert.Equal(t, float64(1), def["staticAlarmRange"].([]interface{})[0].(map[string]interface{})["level"])
}

func TestClearAlarmRanges(t *testing.T) {
	p, requests := newTestProcessor(t)

	require.NoError(t, p.ClearAlarmRanges(context.Background(), "/a/b"))

	require.Len(t, *requests, 2)
	first := (*requests)[0]
	assert.Equal(t, float64(3), first.Body["action"])
	_, hasDefault := first.Body["defaultAlarm"]
	assert.False(t, hasDefault)
	second := (*requests)[1]
	assert.Equal(t, float64(4), second.Body["action"]) // SET_ALARMS
	_, hasContext := second.Body["contextAlarm"]
	assert.False(t, hasContext)
}

func TestResetAlarmRanges(t *testing.T) {
	p, requests := newTestProcessor(t)

	require.NoError(t, p.ResetAlarmRanges(context.Background(), "/a/b"))
	assert.Equal(t, float64(5), (*requests)[0].Body["action"]) // RESET_ALARMS
}

func TestSetAlgorithm(t *testing.T) {
	p, requests := newTestProcessor(t)

	require.NoError(t, p.SetAlgorithm(context.Background(), "/a/algo", "return x * 2"))

	rec := (*requests)[0]
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/mdb/simulator/realtime/algorithms//a/algo", rec.Path)
	assert.Equal(t, float64(0), rec.Body["action"])
	assert.Equal(t, "return x * 2", rec.Body["algorithm"].(map[string]interface{})["text"])
}

func TestResetAlgorithm(t *testing.T) {
	p, requests := newTestProcessor(t)

	require.NoError(t, p.ResetAlgorithm(context.Background(), "/a/algo"))

	rec := (*requests)[0]
	assert.Equal(t, float64(1), rec.Body["action"])
	_, hasText := rec.Body["algorithm"]
	assert.False(t, hasText)
}
