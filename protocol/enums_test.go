package protocol_test

import (
	"testing"

	"astrolink-client/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitoringResult_Name(t *testing.T) {
	tests := []struct {
		code protocol.MonitoringResult
		want string
	}{
		{protocol.MonitoringDisabled, "DISABLED"},
		{protocol.MonitoringInLimits, "IN_LIMITS"},
		{protocol.MonitoringWatch, "WATCH"},
		{protocol.MonitoringWarning, "WARNING"},
		{protocol.MonitoringDistress, "DISTRESS"},
		{protocol.MonitoringCritical, "CRITICAL"},
		{protocol.MonitoringSevere, "SEVERE"},
	}
	for _, tt := range tests {
		name, err := tt.code.Name()
		require.NoError(t, err)
		assert.Equal(t, tt.want, name)
	}
}

func TestMonitoringResult_UnknownCodeFails(t *testing.T) {
	// 枚举代码是间断的：2 不是合法代码
	_, err := protocol.MonitoringResult(2).Name()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2")
}

func TestRangeCondition_Name(t *testing.T) {
	name, err := protocol.RangeConditionLow.Name()
	require.NoError(t, err)
	assert.Equal(t, "LOW", name)

	name, err = protocol.RangeConditionHigh.Name()
	require.NoError(t, err)
	assert.Equal(t, "HIGH", name)

	_, err = protocol.RangeCondition(5).Name()
	assert.Error(t, err)
}

func TestAcquisitionStatus_Name(t *testing.T) {
	tests := []struct {
		code protocol.AcquisitionStatus
		want string
	}{
		{protocol.AcquisitionAcquired, "ACQUIRED"},
		{protocol.AcquisitionNotReceived, "NOT_RECEIVED"},
		{protocol.AcquisitionInvalid, "INVALID"},
		{protocol.AcquisitionExpired, "EXPIRED"},
	}
	for _, tt := range tests {
		name, err := tt.code.Name()
		require.NoError(t, err)
		assert.Equal(t, tt.want, name)
	}

	_, err := protocol.AcquisitionStatus(42).Name()
	assert.Error(t, err)
}

func TestAlarmEventType_Name(t *testing.T) {
	tests := []struct {
		code protocol.AlarmEventType
		want string
	}{
		{protocol.AlarmEventActive, "ACTIVE"},
		{protocol.AlarmEventTriggered, "TRIGGERED"},
		{protocol.AlarmEventAcknowledged, "ACKNOWLEDGED"},
		{protocol.AlarmEventCleared, "CLEARED"},
		{protocol.AlarmEventUpdated, "UPDATED"},
	}
	for _, tt := range tests {
		name, err := tt.code.Name()
		require.NoError(t, err)
		assert.Equal(t, tt.want, name)
	}

	// 0 不在定义域内
	_, err := protocol.AlarmEventType(0).Name()
	assert.Error(t, err)
}
