package tmtc

import (
	"fmt"
	"time"

	"astrolink-client/protocol"
)

// AlarmEvent 报警订阅回调收到的一次生命周期通知
type AlarmEvent struct {
	eventType string
	alarm     *Alarm
}

func newAlarmEvent(msg *protocol.AlarmDataMsg) (*AlarmEvent, error) {
	eventType, err := msg.Type.Name()
	if err != nil {
		return nil, fmt.Errorf("alarm event: %w", err)
	}
	alarm, err := newAlarm(msg)
	if err != nil {
		return nil, err
	}
	return &AlarmEvent{eventType: eventType, alarm: alarm}, nil
}

// EventType 通知类型的符号名（TRIGGERED / UPDATED / ACKNOWLEDGED / CLEARED / ACTIVE）
func (e *AlarmEvent) EventType() string {
	return e.eventType
}

// Alarm 通知所携带的最新报警状态
func (e *AlarmEvent) Alarm() *Alarm {
	return e.alarm
}

func (e *AlarmEvent) String() string {
	return fmt.Sprintf("[%s] %v", e.eventType, e.alarm)
}

// Alarm 一个报警实例的当前状态快照（只读）。
// 同名参数随时间会产生多个报警实例，(Name, SequenceNumber) 才是实例键，
// 做跨通知关联时不能只按名字。
type Alarm struct {
	msg             *protocol.AlarmDataMsg
	triggerValue    *ParameterValue
	mostSevereValue *ParameterValue
	currentValue    *ParameterValue
	acknowledgeTime *time.Time
}

func newAlarm(msg *protocol.AlarmDataMsg) (*Alarm, error) {
	a := &Alarm{msg: msg}

	var err error
	if msg.TriggerValue != nil {
		if a.triggerValue, err = newParameterValue(msg.TriggerValue); err != nil {
			return nil, fmt.Errorf("alarm: trigger value: %w", err)
		}
	}
	if msg.MostSevereValue != nil {
		if a.mostSevereValue, err = newParameterValue(msg.MostSevereValue); err != nil {
			return nil, fmt.Errorf("alarm: most severe value: %w", err)
		}
	}
	if msg.CurrentValue != nil {
		if a.currentValue, err = newParameterValue(msg.CurrentValue); err != nil {
			return nil, fmt.Errorf("alarm: current value: %w", err)
		}
	}

	if info := msg.AcknowledgeInfo; info != nil && info.AcknowledgeTimeUTC != nil {
		t, parseErr := protocol.ParseISOString(*info.AcknowledgeTimeUTC)
		if parseErr != nil {
			return nil, fmt.Errorf("alarm: acknowledge time: %w", parseErr)
		}
		a.acknowledgeTime = &t
	}

	return a, nil
}

// Name 触发参数的完全限定名；无触发值时为空串
func (a *Alarm) Name() string {
	if a.triggerValue == nil {
		return ""
	}
	return a.triggerValue.Name()
}

// SequenceNumber 报警实例序号，区分同名参数先后产生的报警
func (a *Alarm) SequenceNumber() (int32, bool) {
	if a.msg.SeqNum == nil {
		return 0, false
	}
	return *a.msg.SeqNum, true
}

// IsAcknowledged 是否已被确认
func (a *Alarm) IsAcknowledged() bool {
	return a.msg.AcknowledgeInfo != nil
}

// AcknowledgedBy 确认人；确认信息的三个字段各自独立可选，
// 未确认时访问不报错，只返回"不存在"
func (a *Alarm) AcknowledgedBy() (string, bool) {
	if !a.IsAcknowledged() || a.msg.AcknowledgeInfo.AcknowledgedBy == nil {
		return "", false
	}
	return *a.msg.AcknowledgeInfo.AcknowledgedBy, true
}

// AcknowledgeMessage 确认时附带的注释
func (a *Alarm) AcknowledgeMessage() (string, bool) {
	if !a.IsAcknowledged() || a.msg.AcknowledgeInfo.AcknowledgeMessage == nil {
		return "", false
	}
	return *a.msg.AcknowledgeInfo.AcknowledgeMessage, true
}

// AcknowledgeTime 处理器确认时间；缺失返回 nil
func (a *Alarm) AcknowledgeTime() *time.Time {
	if !a.IsAcknowledged() {
		return nil
	}
	return a.acknowledgeTime
}

// TriggerValue 最初触发报警的参数值；缺失返回 nil
func (a *Alarm) TriggerValue() *ParameterValue {
	return a.triggerValue
}

// MostSevereValue 首个把报警推到最高严重度的参数值
func (a *Alarm) MostSevereValue() *ParameterValue {
	return a.mostSevereValue
}

// CurrentValue 该报警关联的最新参数值
func (a *Alarm) CurrentValue() *ParameterValue {
	return a.currentValue
}

// ViolationCount 报警活跃期间越限的参数更新次数
func (a *Alarm) ViolationCount() (int32, bool) {
	if a.msg.Violations == nil {
		return 0, false
	}
	return *a.msg.Violations, true
}

func (a *Alarm) String() string {
	violations := int32(0)
	if v, ok := a.ViolationCount(); ok {
		violations = v
	}
	return fmt.Sprintf("%v (%d violations)", a.triggerValue, violations)
}
