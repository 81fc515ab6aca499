package tmtc

import (
	"testing"
	"time"

	"astrolink-client/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doubleValue(v float64) *protocol.Value {
	return &protocol.Value{Type: protocol.ValueTypeDouble, DoubleValue: &v}
}

func TestParameterValue_QualifiedNameComposition(t *testing.T) {
	// 别名：namespace + "/" + name
	pv, err := newParameterValue(&protocol.ParameterValueMsg{
		ID:       &protocol.NamedObjectId{Namespace: "MDB", Name: "param1"},
		EngValue: doubleValue(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "MDB/param1", pv.Name())

	// 无 namespace：裸名
	pv, err = newParameterValue(&protocol.ParameterValueMsg{
		ID:       &protocol.NamedObjectId{Name: "param1"},
		EngValue: doubleValue(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "param1", pv.Name())
}

func TestParameterValue_ValidityDuration(t *testing.T) {
	expire := int64(5000)
	pv, err := newParameterValue(&protocol.ParameterValueMsg{
		ID:           &protocol.NamedObjectId{Name: "/a/b"},
		ExpireMillis: &expire,
	})
	require.NoError(t, err)

	d, ok := pv.ValidityDuration()
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, d)

	// 未下发过期窗口
	pv, err = newParameterValue(&protocol.ParameterValueMsg{
		ID: &protocol.NamedObjectId{Name: "/a/b"},
	})
	require.NoError(t, err)
	_, ok = pv.ValidityDuration()
	assert.False(t, ok)
}

func TestParameterValue_RawAndEngIndependent(t *testing.T) {
	// 采集失败时可能只有原始值，算法参数可能只有工程值
	raw := uint32(817)
	pv, err := newParameterValue(&protocol.ParameterValueMsg{
		ID:       &protocol.NamedObjectId{Name: "/a/b"},
		RawValue: &protocol.Value{Type: protocol.ValueTypeUint32, Uint32Value: &raw},
	})
	require.NoError(t, err)

	rawValue, ok := pv.RawValue()
	require.True(t, ok)
	assert.Equal(t, uint32(817), rawValue)
	_, ok = pv.EngValue()
	assert.False(t, ok)

	pv, err = newParameterValue(&protocol.ParameterValueMsg{
		ID:       &protocol.NamedObjectId{Name: "/a/b"},
		EngValue: doubleValue(7.5),
	})
	require.NoError(t, err)
	_, ok = pv.RawValue()
	assert.False(t, ok)
	engValue, ok := pv.EngValue()
	require.True(t, ok)
	assert.Equal(t, 7.5, engValue)
}

func TestParameterValue_Timestamps(t *testing.T) {
	pv, err := newParameterValue(&protocol.ParameterValueMsg{
		ID:                 &protocol.NamedObjectId{Name: "/a/b"},
		GenerationTimeUTC:  "2023-11-14T22:13:20.000Z",
		AcquisitionTimeUTC: "2023-11-14T22:13:20.250Z",
	})
	require.NoError(t, err)

	require.NotNil(t, pv.GenerationTime())
	assert.Equal(t, int64(1700000000000), pv.GenerationTime().UnixMilli())
	require.NotNil(t, pv.ReceptionTime())
	assert.Equal(t, int64(1700000000250), pv.ReceptionTime().UnixMilli())

	// 缺失时为 nil
	pv, err = newParameterValue(&protocol.ParameterValueMsg{
		ID: &protocol.NamedObjectId{Name: "/a/b"},
	})
	require.NoError(t, err)
	assert.Nil(t, pv.GenerationTime())
	assert.Nil(t, pv.ReceptionTime())
}

func TestParameterValue_StatusEnums(t *testing.T) {
	monitoring := protocol.MonitoringCritical
	rangeCond := protocol.RangeConditionHigh
	acquisition := protocol.AcquisitionAcquired
	pv, err := newParameterValue(&protocol.ParameterValueMsg{
		ID:                &protocol.NamedObjectId{Name: "/a/b"},
		MonitoringResult:  &monitoring,
		RangeCondition:    &rangeCond,
		AcquisitionStatus: &acquisition,
		ProcessingStatus:  true,
	})
	require.NoError(t, err)

	mr, ok := pv.MonitoringResult()
	require.True(t, ok)
	assert.Equal(t, "CRITICAL", mr)

	rc, ok := pv.RangeCondition()
	require.True(t, ok)
	assert.Equal(t, "HIGH", rc)

	vs, ok := pv.ValidityStatus()
	require.True(t, ok)
	assert.Equal(t, "ACQUIRED", vs)

	assert.True(t, pv.ProcessingStatus())
}

func TestParameterValue_AbsentStatusEnums(t *testing.T) {
	pv, err := newParameterValue(&protocol.ParameterValueMsg{
		ID: &protocol.NamedObjectId{Name: "/a/b"},
	})
	require.NoError(t, err)

	_, ok := pv.MonitoringResult()
	assert.False(t, ok)
	_, ok = pv.RangeCondition()
	assert.False(t, ok)
	_, ok = pv.ValidityStatus()
	assert.False(t, ok)
	assert.False(t, pv.ProcessingStatus())
}

func TestParameterValue_UnknownEnumCodeFailsFast(t *testing.T) {
	// 未知监测结果代码在构造时报错，不会静默吞掉
	monitoring := protocol.MonitoringResult(4)
	_, err := newParameterValue(&protocol.ParameterValueMsg{
		ID:               &protocol.NamedObjectId{Name: "/a/b"},
		MonitoringResult: &monitoring,
	})
	assert.Error(t, err)
}

func TestParameterValue_MalformedValueFailsFast(t *testing.T) {
	_, err := newParameterValue(&protocol.ParameterValueMsg{
		ID:       &protocol.NamedObjectId{Name: "/a/b"},
		EngValue: &protocol.Value{Type: 99},
	})
	assert.Error(t, err)
}

func TestParameterData_PreservesOrder(t *testing.T) {
	msg := &protocol.ParameterDataMsg{
		Parameter: []protocol.ParameterValueMsg{
			{ID: &protocol.NamedObjectId{Name: "/a/first"}, EngValue: doubleValue(1)},
			{ID: &protocol.NamedObjectId{Name: "/a/second"}, EngValue: doubleValue(2)},
			{ID: &protocol.NamedObjectId{Name: "/a/third"}, EngValue: doubleValue(3)},
		},
	}
	pd, err := newParameterData(msg)
	require.NoError(t, err)

	parameters := pd.Parameters()
	require.Len(t, parameters, 3)
	assert.Equal(t, "/a/first", parameters[0].Name())
	assert.Equal(t, "/a/second", parameters[1].Name())
	assert.Equal(t, "/a/third", parameters[2].Name())
}
