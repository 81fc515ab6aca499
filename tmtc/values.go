package tmtc

import (
	"fmt"
	"time"

	"astrolink-client/protocol"
)

// ParameterValue 一个参数的单次带时标采样（只读）。
// 构造时完成全部解码：未知枚举代码或非法值联合体直接报错，不会延迟到访问时。
// 可选字段缺失时访问器返回明确的"不存在"，绝不返回可与真实值混淆的零值。
type ParameterValue struct {
	name             string
	generationTime   *time.Time
	receptionTime    *time.Time
	validityDuration *time.Duration
	rawValue         interface{}
	hasRawValue      bool
	engValue         interface{}
	hasEngValue      bool
	monitoringResult *string
	rangeCondition   *string
	validityStatus   *string
	processingStatus bool
}

func newParameterValue(msg *protocol.ParameterValueMsg) (*ParameterValue, error) {
	pv := &ParameterValue{
		processingStatus: msg.ProcessingStatus,
	}

	if msg.ID != nil {
		if msg.ID.Namespace != "" {
			pv.name = msg.ID.Namespace + "/" + msg.ID.Name
		} else {
			pv.name = msg.ID.Name
		}
	}

	if msg.GenerationTimeUTC != "" {
		t, err := protocol.ParseISOString(msg.GenerationTimeUTC)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: generation time: %w", pv.name, err)
		}
		pv.generationTime = &t
	}
	if msg.AcquisitionTimeUTC != "" {
		t, err := protocol.ParseISOString(msg.AcquisitionTimeUTC)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: acquisition time: %w", pv.name, err)
		}
		pv.receptionTime = &t
	}
	if msg.ExpireMillis != nil {
		d := time.Duration(*msg.ExpireMillis) * time.Millisecond
		pv.validityDuration = &d
	}

	if msg.RawValue != nil {
		decoded, err := protocol.DecodeValue(msg.RawValue)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: raw value: %w", pv.name, err)
		}
		pv.rawValue = decoded
		pv.hasRawValue = true
	}
	if msg.EngValue != nil {
		decoded, err := protocol.DecodeValue(msg.EngValue)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: eng value: %w", pv.name, err)
		}
		pv.engValue = decoded
		pv.hasEngValue = true
	}

	if msg.MonitoringResult != nil {
		name, err := msg.MonitoringResult.Name()
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pv.name, err)
		}
		pv.monitoringResult = &name
	}
	if msg.RangeCondition != nil {
		name, err := msg.RangeCondition.Name()
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pv.name, err)
		}
		pv.rangeCondition = &name
	}
	if msg.AcquisitionStatus != nil {
		name, err := msg.AcquisitionStatus.Name()
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pv.name, err)
		}
		pv.validityStatus = &name
	}

	return pv, nil
}

// Name 参数标识名。按订阅方式不同，可能是完全限定名，也可能是
// namespace/name 组合出的别名。
func (pv *ParameterValue) Name() string {
	return pv.name
}

// GenerationTime 参数生成时间（通常为包时标）；缺失返回 nil
func (pv *ParameterValue) GenerationTime() *time.Time {
	return pv.generationTime
}

// ReceptionTime 服务器收到该值的时间；缺失返回 nil
func (pv *ParameterValue) ReceptionTime() *time.Time {
	return pv.receptionTime
}

// ValidityDuration 值的有效时长（从接收时间起算）。
// 第二个返回值为 false 表示服务器未下发过期窗口。
func (pv *ParameterValue) ValidityDuration() (time.Duration, bool) {
	if pv.validityDuration == nil {
		return 0, false
	}
	return *pv.validityDuration, true
}

// RawValue 原始（未校准）值；与工程值相互独立，可单独缺失
func (pv *ParameterValue) RawValue() (interface{}, bool) {
	return pv.rawValue, pv.hasRawValue
}

// EngValue 工程（已校准）值
func (pv *ParameterValue) EngValue() (interface{}, bool) {
	return pv.engValue, pv.hasEngValue
}

// MonitoringResult 限值监测结果的符号名（如 IN_LIMITS / CRITICAL）
func (pv *ParameterValue) MonitoringResult() (string, bool) {
	if pv.monitoringResult == nil {
		return "", false
	}
	return *pv.monitoringResult, true
}

// RangeCondition 越限方向（LOW / HIGH），仅在越限时下发
func (pv *ParameterValue) RangeCondition() (string, bool) {
	if pv.rangeCondition == nil {
		return "", false
	}
	return *pv.rangeCondition, true
}

// ValidityStatus 采集状态的符号名（如 ACQUIRED / EXPIRED）
func (pv *ParameterValue) ValidityStatus() (string, bool) {
	if pv.validityStatus == nil {
		return "", false
	}
	return *pv.validityStatus, true
}

// ProcessingStatus 处理状态
func (pv *ParameterValue) ProcessingStatus() bool {
	return pv.processingStatus
}

func (pv *ParameterValue) String() string {
	line := fmt.Sprintf("%v %s %v %v", pv.generationTime, pv.name, pv.rawValue, pv.engValue)
	if pv.monitoringResult != nil {
		line += " [" + *pv.monitoringResult + "]"
	}
	return line
}

// ParameterData 一次推送中的一批参数值（只读）
type ParameterData struct {
	parameters []*ParameterValue
}

func newParameterData(msg *protocol.ParameterDataMsg) (*ParameterData, error) {
	parameters := make([]*ParameterValue, 0, len(msg.Parameter))
	for i := range msg.Parameter {
		pv, err := newParameterValue(&msg.Parameter[i])
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, pv)
	}
	return &ParameterData{parameters: parameters}, nil
}

// Parameters 批内的全部参数值，保持到达顺序
func (pd *ParameterData) Parameters() []*ParameterValue {
	return pd.parameters
}
