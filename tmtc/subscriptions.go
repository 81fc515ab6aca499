package tmtc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"astrolink-client/protocol"
	"astrolink-client/ws"

	"go.uber.org/zap"
)

// 订阅视图：ws 层保证单协程按到达顺序分发，这里在回调里维护本地缓存，
// 缓存写入发生在用户回调之前。解码失败的消息记日志后丢弃，不中断订阅。

const defaultSubscribeTimeout = 60 * time.Second

// commandHistoryCacheKey 命令标识四元组拼缓存键（缺失字段按零值参与拼接）
func commandHistoryCacheKey(id *protocol.CommandId) string {
	if id == nil {
		return ""
	}
	origin := ""
	if id.Origin != nil {
		origin = *id.Origin
	}
	var seqNum int32
	if id.SequenceNumber != nil {
		seqNum = *id.SequenceNumber
	}
	return fmt.Sprintf("%d__%s__%d__%s", id.GenerationTime, origin, seqNum, id.CommandName)
}

// CommandHistorySubscription 命令历史订阅。
// 服务器按增量推属性，本地缓存负责把增量拼成完整记录；
// 更新量大时调用方应定期 ClearCache。
// 注意：缓存里没有的命令收到增量时，拼出的记录可能不完整。
type CommandHistorySubscription struct {
	sub    *ws.Subscription
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*CommandHistory
}

// CommandHistorySubscriptionOptions 命令历史订阅参数
type CommandHistorySubscriptionOptions struct {
	// Commands 只接收这些已下发命令的更新；空表示接收全部
	Commands []*IssuedCommand
	// OnData 每条更新合并进缓存后回调，传入合并后的记录
	OnData func(*CommandHistory)
	// Timeout 等服务器确认的时限，<=0 取 60s
	Timeout time.Duration
}

// ClearCache 清空本地命令历史缓存
func (s *CommandHistorySubscription) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]*CommandHistory)
	s.mu.Unlock()
}

// GetCommandHistory 取指定命令在本地缓存中的记录；没有时返回 nil
func (s *CommandHistorySubscription) GetCommandHistory(issuedCommand *IssuedCommand) *CommandHistory {
	key := commandHistoryCacheKey(issuedCommand.commandID())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[key]
}

// processEntry 把一条推送合并进缓存：已有记录就地合并，否则新建
func (s *CommandHistorySubscription) processEntry(msg *protocol.CommandHistoryEntryMsg) (*CommandHistory, error) {
	key := commandHistoryCacheKey(msg.CommandID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[key]; ok {
		if err := existing.Update(msg.Attr); err != nil {
			return nil, err
		}
		return existing, nil
	}
	record, err := newCommandHistory(msg)
	if err != nil {
		return nil, err
	}
	s.cache[key] = record
	return record, nil
}

// Cancel 关闭订阅
func (s *CommandHistorySubscription) Cancel() { s.sub.Cancel() }

// Done 订阅终止后关闭
func (s *CommandHistorySubscription) Done() <-chan struct{} { return s.sub.Done() }

// Err 终止原因；主动 Cancel 返回 nil
func (s *CommandHistorySubscription) Err() error { return s.sub.Err() }

// CreateCommandHistorySubscription 开命令历史订阅
func (p *ProcessorClient) CreateCommandHistorySubscription(ctx context.Context, opts CommandHistorySubscriptionOptions) (*CommandHistorySubscription, error) {
	request := protocol.CommandHistorySubscriptionRequestMsg{
		IgnorePastCommands: true,
	}
	for _, ic := range opts.Commands {
		if id := ic.commandID(); id != nil {
			request.CommandID = append(request.CommandID, *id)
		}
	}

	subscription := &CommandHistorySubscription{
		logger: p.logger,
		cache:  make(map[string]*CommandHistory),
	}

	wsSub, err := ws.Open(ctx, p.client.WebSocketURL(p.instance), ws.Options{
		Resource:    "cmdhistory",
		RequestData: request,
		Timeout:     orDefaultTimeout(opts.Timeout),
		Logger:      p.logger,
		OnData: func(data *protocol.WebSocketData) {
			if data.Type != protocol.DataTypeCommandHistory || data.Command == nil {
				return
			}
			record, err := subscription.processEntry(data.Command)
			if err != nil {
				p.logger.Warn("Dropping malformed command history entry", zap.Error(err))
				return
			}
			if opts.OnData != nil {
				opts.OnData(record)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	subscription.sub = wsSub
	return subscription, nil
}

// ParameterSubscription 参数订阅，缓存每个参数最近一次收到的值
type ParameterSubscription struct {
	sub    *ws.Subscription
	logger *zap.Logger

	mu             sync.RWMutex
	values         map[string]*ParameterValue
	deliveryCount  int
	subscriptionID int32
}

// ParameterSubscriptionOptions 参数订阅参数。
// 零值不是可用默认：请从 DefaultParameterSubscriptionOptions 出发改字段。
type ParameterSubscriptionOptions struct {
	// Parameters 订阅的参数名（完全限定名或 NAMESPACE/NAME 别名）
	Parameters []string
	// OnData 每批数据进缓存后回调
	OnData func(*ParameterData)
	// AbortOnInvalid 为 true 时任一无效参数导致整个请求失败
	AbortOnInvalid bool
	// UpdateOnExpiration 为 true 时参数值过期也推一次（值不变，状态为 EXPIRED）
	UpdateOnExpiration bool
	// SendFromCache 为 true 时先把服务器缓存里的当前值推过来
	SendFromCache bool
	// Timeout 等服务器确认的时限，<=0 取 60s
	Timeout time.Duration
}

// DefaultParameterSubscriptionOptions 常用默认：校验失败即中止、先推缓存值
func DefaultParameterSubscriptionOptions(parameters ...string) ParameterSubscriptionOptions {
	return ParameterSubscriptionOptions{
		Parameters:     parameters,
		AbortOnInvalid: true,
		SendFromCache:  true,
	}
}

// SubscriptionID 服务器分配的订阅号
func (s *ParameterSubscription) SubscriptionID() int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscriptionID
}

// DeliveryCount 已收到的推送批数
func (s *ParameterSubscription) DeliveryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deliveryCount
}

// GetValue 取参数在本地缓存中的最近值；还没收到过时返回 nil
func (s *ParameterSubscription) GetValue(parameter string) *ParameterValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[parameter]
}

// Add 往订阅里追加参数
func (s *ParameterSubscription) Add(parameters []string, abortOnInvalid, sendFromCache bool) error {
	if len(parameters) == 0 {
		return nil
	}
	ids, err := protocol.BuildNamedObjectIDs(parameters)
	if err != nil {
		return err
	}
	request := protocol.ParameterSubscriptionRequestMsg{
		SubscriptionID: s.SubscriptionID(),
		ID:             ids,
		AbortOnInvalid: abortOnInvalid,
		SendFromCache:  sendFromCache,
	}
	return s.sub.Send("subscribe", request)
}

// Remove 从订阅里移除参数
func (s *ParameterSubscription) Remove(parameters []string) error {
	if len(parameters) == 0 {
		return nil
	}
	ids, err := protocol.BuildNamedObjectIDs(parameters)
	if err != nil {
		return err
	}
	request := protocol.ParameterSubscriptionRequestMsg{
		SubscriptionID: s.SubscriptionID(),
		ID:             ids,
	}
	return s.sub.Send("unsubscribe", request)
}

func (s *ParameterSubscription) processData(data *ParameterData) {
	s.mu.Lock()
	s.deliveryCount++
	for _, pv := range data.Parameters() {
		s.values[pv.Name()] = pv
	}
	s.mu.Unlock()
}

// Cancel 关闭订阅
func (s *ParameterSubscription) Cancel() { s.sub.Cancel() }

// Done 订阅终止后关闭
func (s *ParameterSubscription) Done() <-chan struct{} { return s.sub.Done() }

// Err 终止原因；主动 Cancel 返回 nil
func (s *ParameterSubscription) Err() error { return s.sub.Err() }

// CreateParameterSubscription 开参数订阅
func (p *ProcessorClient) CreateParameterSubscription(ctx context.Context, opts ParameterSubscriptionOptions) (*ParameterSubscription, error) {
	ids, err := protocol.BuildNamedObjectIDs(opts.Parameters)
	if err != nil {
		return nil, err
	}
	// subscriptionId -1 表示要求建新订阅
	request := protocol.ParameterSubscriptionRequestMsg{
		SubscriptionID:     -1,
		ID:                 ids,
		AbortOnInvalid:     opts.AbortOnInvalid,
		UpdateOnExpiration: opts.UpdateOnExpiration,
		SendFromCache:      opts.SendFromCache,
	}

	subscription := &ParameterSubscription{
		logger: p.logger,
		values: make(map[string]*ParameterValue),
	}

	wsSub, err := ws.Open(ctx, p.client.WebSocketURL(p.instance), ws.Options{
		Resource:    "parameter",
		RequestData: request,
		Timeout:     orDefaultTimeout(opts.Timeout),
		Logger:      p.logger,
		OnData: func(data *protocol.WebSocketData) {
			if data.Type != protocol.DataTypeParameter || data.ParameterData == nil {
				return
			}
			parameterData, err := newParameterData(data.ParameterData)
			if err != nil {
				p.logger.Warn("Dropping malformed parameter data", zap.Error(err))
				return
			}
			subscription.processData(parameterData)
			if opts.OnData != nil {
				opts.OnData(parameterData)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	subscription.sub = wsSub

	var reply protocol.ParameterSubscriptionReplyMsg
	if err := json.Unmarshal(wsSub.Reply(), &reply); err != nil {
		wsSub.Cancel()
		return nil, fmt.Errorf("parse subscription reply: %w", err)
	}
	if reply.SubscriptionID != nil {
		subscription.mu.Lock()
		subscription.subscriptionID = *reply.SubscriptionID
		subscription.mu.Unlock()
	}
	return subscription, nil
}

// AlarmSubscription 报警订阅，缓存当前活跃的报警。
// 每个参数同一时刻最多一个活跃报警，因此缓存按参数名索引；
// ACKNOWLEDGED / CLEARED 通知把对应报警逐出缓存。
type AlarmSubscription struct {
	sub    *ws.Subscription
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*Alarm
}

// AlarmSubscriptionOptions 报警订阅参数
type AlarmSubscriptionOptions struct {
	// OnData 每条通知更新缓存后回调
	OnData func(*AlarmEvent)
	// Timeout 等服务器确认的时限，<=0 取 60s
	Timeout time.Duration
}

// GetAlarm 取参数当前的活跃报警；没有时返回 nil
func (s *AlarmSubscription) GetAlarm(parameter string) *Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[parameter]
}

// ListAlarms 当前全部活跃报警的快照
func (s *AlarmSubscription) ListAlarms() []*Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alarms := make([]*Alarm, 0, len(s.cache))
	for _, alarm := range s.cache {
		alarms = append(alarms, alarm)
	}
	return alarms
}

func (s *AlarmSubscription) processEvent(event *AlarmEvent) {
	alarm := event.Alarm()
	s.mu.Lock()
	switch event.EventType() {
	case "ACKNOWLEDGED", "CLEARED":
		delete(s.cache, alarm.Name())
	default:
		s.cache[alarm.Name()] = alarm
	}
	s.mu.Unlock()
}

// Cancel 关闭订阅
func (s *AlarmSubscription) Cancel() { s.sub.Cancel() }

// Done 订阅终止后关闭
func (s *AlarmSubscription) Done() <-chan struct{} { return s.sub.Done() }

// Err 终止原因；主动 Cancel 返回 nil
func (s *AlarmSubscription) Err() error { return s.sub.Err() }

// CreateAlarmSubscription 开报警订阅
func (p *ProcessorClient) CreateAlarmSubscription(ctx context.Context, opts AlarmSubscriptionOptions) (*AlarmSubscription, error) {
	subscription := &AlarmSubscription{
		logger: p.logger,
		cache:  make(map[string]*Alarm),
	}

	wsSub, err := ws.Open(ctx, p.client.WebSocketURL(p.instance), ws.Options{
		Resource: "alarms",
		Timeout:  orDefaultTimeout(opts.Timeout),
		Logger:   p.logger,
		OnData: func(data *protocol.WebSocketData) {
			if data.Type != protocol.DataTypeAlarmData || data.AlarmData == nil {
				return
			}
			event, err := newAlarmEvent(data.AlarmData)
			if err != nil {
				p.logger.Warn("Dropping malformed alarm data", zap.Error(err))
				return
			}
			subscription.processEvent(event)
			if opts.OnData != nil {
				opts.OnData(event)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	subscription.sub = wsSub
	return subscription, nil
}

func orDefaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultSubscribeTimeout
	}
	return d
}
