package tmtc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"astrolink-client/protocol"
)

// CommandHistoryEvent 命令的一次命名状态跃迁
type CommandHistoryEvent struct {
	// Name 事件名（如 Acknowledge_Sent）
	Name string
	// Time 事件时间，来自解码后的属性值（通常是 ISO 字符串或 time.Time）
	Time interface{}
	// Status 事件状态（如 OK / NOK）
	Status string
}

func (e CommandHistoryEvent) String() string {
	return fmt.Sprintf("%s: %s at %v", e.Name, e.Status, e.Time)
}

// CommandHistory 一条命令的累计属性集。
// 服务器按增量推送属性，Update 按到达顺序合并，同名键后写覆盖先写。
// 订阅分发协程会就地合并更新，访问器全程加读锁。
type CommandHistory struct {
	generationTime time.Time
	commandID      *protocol.CommandId

	mu         sync.RWMutex
	attributes map[string]interface{}
}

func newCommandHistory(msg *protocol.CommandHistoryEntryMsg) (*CommandHistory, error) {
	ch := &CommandHistory{
		commandID:  msg.CommandID,
		attributes: make(map[string]interface{}),
	}
	if msg.GenerationTimeUTC != "" {
		t, err := protocol.ParseISOString(msg.GenerationTimeUTC)
		if err != nil {
			return nil, fmt.Errorf("command history: generation time: %w", err)
		}
		ch.generationTime = t
	}
	if err := ch.Update(msg.Attr); err != nil {
		return nil, err
	}
	return ch, nil
}

// Update 合并一批属性（后写覆盖先写）。任一属性值解码失败则整批拒绝。
func (ch *CommandHistory) Update(attrs []protocol.CommandHistoryAttribute) error {
	decoded := make(map[string]interface{}, len(attrs))
	for _, attr := range attrs {
		value, err := protocol.DecodeValue(attr.Value)
		if err != nil {
			return fmt.Errorf("command history: attribute %s: %w", attr.Name, err)
		}
		decoded[attr.Name] = value
	}

	ch.mu.Lock()
	for name, value := range decoded {
		ch.attributes[name] = value
	}
	ch.mu.Unlock()
	return nil
}

// GenerationTime 服务器设置的生成时间
func (ch *CommandHistory) GenerationTime() time.Time {
	return ch.generationTime
}

// Name 命令名
func (ch *CommandHistory) Name() string {
	if ch.commandID == nil {
		return ""
	}
	return ch.commandID.CommandName
}

// Origin 下发来源（常为主机名）；服务器未下发时第二个返回值为 false
func (ch *CommandHistory) Origin() (string, bool) {
	if ch.commandID == nil || ch.commandID.Origin == nil {
		return "", false
	}
	return *ch.commandID.Origin, true
}

// SequenceNumber 下发端分配的序号
func (ch *CommandHistory) SequenceNumber() (int32, bool) {
	if ch.commandID == nil || ch.commandID.SequenceNumber == nil {
		return 0, false
	}
	return *ch.commandID.SequenceNumber, true
}

// Attributes 当前属性集快照（属性名由服务器定义，开放式）
func (ch *CommandHistory) Attributes() map[string]interface{} {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	snapshot := make(map[string]interface{}, len(ch.attributes))
	for name, value := range ch.attributes {
		snapshot[name] = value
	}
	return snapshot
}

// Username 下发者用户名
func (ch *CommandHistory) Username() (string, bool) {
	return ch.stringAttribute("username")
}

// Source 命令的字符串形式
func (ch *CommandHistory) Source() (string, bool) {
	return ch.stringAttribute("source")
}

// Binary 命令的二进制形式
func (ch *CommandHistory) Binary() ([]byte, bool) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	if b, ok := ch.attributes["binary"].([]byte); ok {
		return b, true
	}
	return nil, false
}

// IsComplete 命令是否已终结。终结不代表成功，见 IsFailed。
func (ch *CommandHistory) IsComplete() bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	_, ok := ch.attributes["CommandComplete"]
	return ok
}

// IsFailed 命令是否以失败终结（CommandComplete 等于 "NOK"）
func (ch *CommandHistory) IsFailed() bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	value, ok := ch.attributes["CommandComplete"]
	return ok && value == "NOK"
}

// FailureMessage 失败原因，仅在失败时有意义
func (ch *CommandHistory) FailureMessage() (string, bool) {
	return ch.stringAttribute("CommandFailed")
}

// Comment 下发时附带的用户注释。
// 旧版服务器用大写 "Comment" 键，新版用 "comment"，大写键为空串时回落到小写键。
func (ch *CommandHistory) Comment() (string, bool) {
	if comment, ok := ch.stringAttribute("Comment"); ok {
		return comment, true
	}
	return ch.stringAttribute("comment")
}

// TransmissionConstraints 传输约束状态。
// 属性键 "TransmissionContraints" 的拼写错误来自服务器侧历史定义，必须原样匹配。
func (ch *CommandHistory) TransmissionConstraints() (string, bool) {
	return ch.stringAttribute("TransmissionContraints")
}

// AcknowledgeEvent 命令被确认的事件；时间与状态属性都在时才存在
func (ch *CommandHistory) AcknowledgeEvent() *CommandHistoryEvent {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.assembleEvent("Acknowledge_Sent")
}

// VerificationEvents 校验相关事件（Queued 在前，Started 在后），只含齐备的
func (ch *CommandHistory) VerificationEvents() []CommandHistoryEvent {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	var events []CommandHistoryEvent
	if queued := ch.assembleEvent("Verifier_Queued"); queued != nil {
		events = append(events, *queued)
	}
	if started := ch.assembleEvent("Verifier_Started"); started != nil {
		events = append(events, *started)
	}
	return events
}

// Events 全部事件：确认事件在前，校验事件在后，缺失的被滤掉
func (ch *CommandHistory) Events() []CommandHistoryEvent {
	var events []CommandHistoryEvent
	if ack := ch.AcknowledgeEvent(); ack != nil {
		events = append(events, *ack)
	}
	events = append(events, ch.VerificationEvents()...)
	return events
}

// assembleEvent 由 <name>_Time / <name>_Status 属性对拼出事件。
// 两个属性都要有"有内容"的值（空串等空值按缺失处理）。调用方持锁。
func (ch *CommandHistory) assembleEvent(name string) *CommandHistoryEvent {
	eventTime := ch.attributes[name+"_Time"]
	status := ch.attributes[name+"_Status"]
	if !hasContent(eventTime) || !hasContent(status) {
		return nil
	}
	statusText, ok := status.(string)
	if !ok {
		return nil
	}
	return &CommandHistoryEvent{Name: name, Time: eventTime, Status: statusText}
}

func (ch *CommandHistory) stringAttribute(name string) (string, bool) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	if s, ok := ch.attributes[name].(string); ok && s != "" {
		return s, true
	}
	return "", false
}

// hasContent 判定解码后的属性值是否"有内容"（空串、零数值、空集合按无内容处理）
func hasContent(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return value != ""
	case []byte:
		return len(value) > 0
	case bool:
		return value
	case float64:
		return value != 0
	case int32:
		return value != 0
	case int64:
		return value != 0
	case uint32:
		return value != 0
	case uint64:
		return value != 0
	case []interface{}:
		return len(value) > 0
	case map[string]interface{}:
		return len(value) > 0
	default:
		// time.Time 等其余类型一律视为有内容
		return true
	}
}

func (ch *CommandHistory) String() string {
	return fmt.Sprintf("%s %v", ch.Name(), ch.Events())
}

// IssuedCommand 命令下发确认的只读视图。
// 持有所属 ProcessorClient 的引用，用于就地开命令历史订阅。
type IssuedCommand struct {
	msg            *protocol.IssueCommandResponseMsg
	client         *ProcessorClient
	generationTime *time.Time
}

func newIssuedCommand(msg *protocol.IssueCommandResponseMsg, client *ProcessorClient) (*IssuedCommand, error) {
	ic := &IssuedCommand{msg: msg, client: client}
	if entry := msg.CommandQueueEntry; entry != nil && entry.GenerationTimeUTC != "" {
		t, err := protocol.ParseISOString(entry.GenerationTimeUTC)
		if err != nil {
			return nil, fmt.Errorf("issued command: generation time: %w", err)
		}
		ic.generationTime = &t
	}
	return ic, nil
}

func (ic *IssuedCommand) queueEntry() *protocol.CommandQueueEntryMsg {
	return ic.msg.CommandQueueEntry
}

func (ic *IssuedCommand) commandID() *protocol.CommandId {
	if entry := ic.queueEntry(); entry != nil {
		return entry.CmdID
	}
	return nil
}

// Name 命令的完全限定名
func (ic *IssuedCommand) Name() string {
	if id := ic.commandID(); id != nil {
		return id.CommandName
	}
	return ""
}

// GenerationTime 服务器设置的生成时间；缺失返回 nil
func (ic *IssuedCommand) GenerationTime() *time.Time {
	return ic.generationTime
}

// Username 下发者用户名
func (ic *IssuedCommand) Username() (string, bool) {
	entry := ic.queueEntry()
	if entry == nil || entry.Username == nil {
		return "", false
	}
	return *entry.Username, true
}

// Queue 命令被分配到的队列
func (ic *IssuedCommand) Queue() (string, bool) {
	entry := ic.queueEntry()
	if entry == nil || entry.QueueName == nil {
		return "", false
	}
	return *entry.QueueName, true
}

// Origin 下发来源
func (ic *IssuedCommand) Origin() (string, bool) {
	id := ic.commandID()
	if id == nil || id.Origin == nil {
		return "", false
	}
	return *id.Origin, true
}

// SequenceNumber 下发端分配的序号
func (ic *IssuedCommand) SequenceNumber() (int32, bool) {
	id := ic.commandID()
	if id == nil || id.SequenceNumber == nil {
		return 0, false
	}
	return *id.SequenceNumber, true
}

// Source 命令的字符串形式
func (ic *IssuedCommand) Source() (string, bool) {
	if ic.msg.Source == nil {
		return "", false
	}
	return *ic.msg.Source, true
}

// Hex 命令的十六进制形式
func (ic *IssuedCommand) Hex() (string, bool) {
	if ic.msg.Hex == nil {
		return "", false
	}
	return *ic.msg.Hex, true
}

// Binary 命令的二进制形式；缺失返回 nil
func (ic *IssuedCommand) Binary() []byte {
	return ic.msg.Binary
}

// CreateCommandHistorySubscription 只针对本条命令开命令历史订阅
func (ic *IssuedCommand) CreateCommandHistorySubscription(ctx context.Context, opts CommandHistorySubscriptionOptions) (*CommandHistorySubscription, error) {
	opts.Commands = []*IssuedCommand{ic}
	return ic.client.CreateCommandHistorySubscription(ctx, opts)
}

func (ic *IssuedCommand) String() string {
	source := ""
	if s, ok := ic.Source(); ok {
		source = s
	}
	return fmt.Sprintf("%v %s", ic.generationTime, source)
}
