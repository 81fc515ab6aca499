package protocol

import "fmt"

// 本文件镜像服务器协议模式中的封闭枚举。
// 数值代码与符号名必须与服务器侧定义逐项一致，解码到未知代码一律报错。

// MonitoringResult 限值监测结果
type MonitoringResult int32

const (
	MonitoringDisabled MonitoringResult = 0
	MonitoringInLimits MonitoringResult = 1
	MonitoringWatch    MonitoringResult = 7
	MonitoringWarning  MonitoringResult = 10
	MonitoringDistress MonitoringResult = 13
	MonitoringCritical MonitoringResult = 16
	MonitoringSevere   MonitoringResult = 19
)

var monitoringResultNames = map[MonitoringResult]string{
	MonitoringDisabled: "DISABLED",
	MonitoringInLimits: "IN_LIMITS",
	MonitoringWatch:    "WATCH",
	MonitoringWarning:  "WARNING",
	MonitoringDistress: "DISTRESS",
	MonitoringCritical: "CRITICAL",
	MonitoringSevere:   "SEVERE",
}

// Name 返回符号名；未知代码返回错误
func (r MonitoringResult) Name() (string, error) {
	if name, ok := monitoringResultNames[r]; ok {
		return name, nil
	}
	return "", fmt.Errorf("protocol: unknown monitoring result code %d", int32(r))
}

// RangeCondition 越限方向（低于下限或高于上限）
type RangeCondition int32

const (
	RangeConditionLow  RangeCondition = 0
	RangeConditionHigh RangeCondition = 1
)

var rangeConditionNames = map[RangeCondition]string{
	RangeConditionLow:  "LOW",
	RangeConditionHigh: "HIGH",
}

// Name 返回符号名；未知代码返回错误
func (r RangeCondition) Name() (string, error) {
	if name, ok := rangeConditionNames[r]; ok {
		return name, nil
	}
	return "", fmt.Errorf("protocol: unknown range condition code %d", int32(r))
}

// AcquisitionStatus 采集状态（参数值的有效性）
type AcquisitionStatus int32

const (
	AcquisitionAcquired    AcquisitionStatus = 0
	AcquisitionNotReceived AcquisitionStatus = 1
	AcquisitionInvalid     AcquisitionStatus = 2
	AcquisitionExpired     AcquisitionStatus = 3
)

var acquisitionStatusNames = map[AcquisitionStatus]string{
	AcquisitionAcquired:    "ACQUIRED",
	AcquisitionNotReceived: "NOT_RECEIVED",
	AcquisitionInvalid:     "INVALID",
	AcquisitionExpired:     "EXPIRED",
}

// Name 返回符号名；未知代码返回错误
func (s AcquisitionStatus) Name() (string, error) {
	if name, ok := acquisitionStatusNames[s]; ok {
		return name, nil
	}
	return "", fmt.Errorf("protocol: unknown acquisition status code %d", int32(s))
}

// AlarmEventType 报警通知类型（AlarmData.type）
type AlarmEventType int32

const (
	AlarmEventActive       AlarmEventType = 1
	AlarmEventTriggered    AlarmEventType = 2
	AlarmEventAcknowledged AlarmEventType = 3
	AlarmEventCleared      AlarmEventType = 4
	AlarmEventUpdated      AlarmEventType = 5
)

var alarmEventTypeNames = map[AlarmEventType]string{
	AlarmEventActive:       "ACTIVE",
	AlarmEventTriggered:    "TRIGGERED",
	AlarmEventAcknowledged: "ACKNOWLEDGED",
	AlarmEventCleared:      "CLEARED",
	AlarmEventUpdated:      "UPDATED",
}

// Name 返回符号名；未知代码返回错误
func (t AlarmEventType) Name() (string, error) {
	if name, ok := alarmEventTypeNames[t]; ok {
		return name, nil
	}
	return "", fmt.Errorf("protocol: unknown alarm event type code %d", int32(t))
}

// AlarmSeverity 报警级别（限值区间的严重度，按递增排序）
type AlarmSeverity int32

const (
	SeverityWatch    AlarmSeverity = 1
	SeverityWarning  AlarmSeverity = 2
	SeverityDistress AlarmSeverity = 3
	SeverityCritical AlarmSeverity = 4
	SeveritySevere   AlarmSeverity = 5
)

// CalibratorKind 校准器类型代码
type CalibratorKind int32

const (
	CalibratorPolynomial CalibratorKind = 0
	CalibratorSpline     CalibratorKind = 1
)

// ChangeParameterAction 参数定义变更动作
type ChangeParameterAction int32

const (
	ActionSetDefaultCalibrator ChangeParameterAction = 0
	ActionSetCalibrators       ChangeParameterAction = 1
	ActionResetCalibrators     ChangeParameterAction = 2
	ActionSetDefaultAlarms     ChangeParameterAction = 3
	ActionSetAlarms            ChangeParameterAction = 4
	ActionResetAlarms          ChangeParameterAction = 5
)

// ChangeAlgorithmAction 算法定义变更动作
type ChangeAlgorithmAction int32

const (
	AlgorithmActionSet   ChangeAlgorithmAction = 0
	AlgorithmActionReset ChangeAlgorithmAction = 1
)
