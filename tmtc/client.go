package tmtc

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"astrolink-client/client"
	"astrolink-client/protocol"

	"go.uber.org/zap"
)

// commandSequence 进程级原子计数器，给每条下发的命令编独立序号
var commandSequence atomic.Int32

func nextSequenceNumber() int32 {
	return commandSequence.Add(1)
}

// ProcessorClient 聚合某个处理器上的遥测遥控操作
type ProcessorClient struct {
	client    *client.Client
	instance  string
	processor string
	logger    *zap.Logger
}

// NewProcessorClient 创建处理器客户端（常用组合：实例名 + "realtime"）
func NewProcessorClient(c *client.Client, instance, processor string) *ProcessorClient {
	return &ProcessorClient{
		client:    c,
		instance:  instance,
		processor: processor,
		logger:    c.Logger(),
	}
}

// GetParameterValue 查询单个参数的当前值。
// fromCache 为 false 时阻塞等一个新值，最多等 timeout；为 true 时直接取服务器缓存。
// 服务器没有该参数的值时返回 (nil, nil)。
func (p *ProcessorClient) GetParameterValue(ctx context.Context, parameter string, fromCache bool, timeout time.Duration) (*ParameterValue, error) {
	name, err := protocol.AdaptNameForREST(parameter)
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"fromCache": {strconv.FormatBool(fromCache)},
		"timeout":   {strconv.FormatInt(timeout.Milliseconds(), 10)},
	}
	path := fmt.Sprintf("/processors/%s/%s/parameters%s", p.instance, p.processor, name)

	var msg protocol.ParameterValueMsg
	if err := p.client.Get(ctx, path, query, &msg); err != nil {
		return nil, fmt.Errorf("get parameter value: %w", err)
	}

	// 服务器没有值时只回一个 id，换算成 nil
	if msg.RawValue == nil && msg.EngValue == nil {
		return nil, nil
	}
	return newParameterValue(&msg)
}

// GetParameterValues 批量查询参数当前值。
// 返回切片与请求同长同序，无值的参数对应 nil。
func (p *ProcessorClient) GetParameterValues(ctx context.Context, parameters []string, fromCache bool, timeout time.Duration) ([]*ParameterValue, error) {
	ids, err := protocol.BuildNamedObjectIDs(parameters)
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"fromCache": {strconv.FormatBool(fromCache)},
		"timeout":   {strconv.FormatInt(timeout.Milliseconds(), 10)},
	}
	body := protocol.BulkGetParameterValueRequestMsg{ID: ids}
	path := fmt.Sprintf("/processors/%s/%s/parameters/mget", p.instance, p.processor)

	var response protocol.BulkGetParameterValueResponseMsg
	if err := p.client.Post(ctx, path+"?"+query.Encode(), body, &response); err != nil {
		return nil, fmt.Errorf("get parameter values: %w", err)
	}

	values := make([]*ParameterValue, 0, len(ids))
	for _, id := range ids {
		var match *protocol.ParameterValueMsg
		for i := range response.Value {
			if response.Value[i].ID != nil && *response.Value[i].ID == id {
				match = &response.Value[i]
				break
			}
		}
		if match == nil {
			values = append(values, nil)
			continue
		}
		pv, err := newParameterValue(match)
		if err != nil {
			return nil, err
		}
		values = append(values, pv)
	}
	return values, nil
}

// SetParameterValue 写软件参数的值
func (p *ProcessorClient) SetParameterValue(ctx context.Context, parameter string, value interface{}) error {
	name, err := protocol.AdaptNameForREST(parameter)
	if err != nil {
		return err
	}
	encoded, err := protocol.EncodeValue(value)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/processors/%s/%s/parameters%s", p.instance, p.processor, name)
	if err := p.client.Put(ctx, path, encoded, nil); err != nil {
		return fmt.Errorf("set parameter value: %w", err)
	}
	return nil
}

// SetParameterValues 批量写参数值（values 按参数名索引）
func (p *ProcessorClient) SetParameterValues(ctx context.Context, values map[string]interface{}) error {
	body := protocol.BulkSetParameterValueRequestMsg{}
	for parameter, value := range values {
		id, err := protocol.BuildNamedObjectID(parameter)
		if err != nil {
			return err
		}
		encoded, err := protocol.EncodeValue(value)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", parameter, err)
		}
		body.Request = append(body.Request, protocol.SetParameterValueRequest{
			ID:    id,
			Value: encoded,
		})
	}
	path := fmt.Sprintf("/processors/%s/%s/parameters/mset", p.instance, p.processor)
	if err := p.client.Post(ctx, path, body, nil); err != nil {
		return fmt.Errorf("set parameter values: %w", err)
	}
	return nil
}

// IssueCommandOptions 命令下发选项
type IssueCommandOptions struct {
	// Args 命名参数（命令定义要求时必填）
	Args map[string]interface{}
	// DryRun 为 true 时服务器只做校验不真正下发
	DryRun bool
	// Comment 附在命令上的注释
	Comment string
}

// IssueCommand 下发命令。序号由进程级计数器分配，来源填本机主机名。
func (p *ProcessorClient) IssueCommand(ctx context.Context, command string, opts IssueCommandOptions) (*IssuedCommand, error) {
	name, err := protocol.AdaptNameForREST(command)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	request := protocol.IssueCommandRequestMsg{
		SequenceNumber: nextSequenceNumber(),
		Origin:         hostname,
		DryRun:         opts.DryRun,
		Comment:        opts.Comment,
	}
	for argName, argValue := range opts.Args {
		request.Assignment = append(request.Assignment, protocol.CommandAssignment{
			Name:  argName,
			Value: fmt.Sprintf("%v", argValue),
		})
	}

	path := fmt.Sprintf("/processors/%s/%s/commands%s", p.instance, p.processor, name)
	var response protocol.IssueCommandResponseMsg
	if err := p.client.Post(ctx, path, request, &response); err != nil {
		return nil, fmt.Errorf("issue command: %w", err)
	}

	p.logger.Info("Command issued",
		zap.String("command", command),
		zap.Int32("sequence_number", request.SequenceNumber),
		zap.Bool("dry_run", opts.DryRun),
	)
	return newIssuedCommand(&response, p)
}

// ListAlarms 列出处理器上的活跃报警（不查归档），按触发时间升序。
// start（含）/stop（不含）限定触发时间窗，nil 表示不限。
func (p *ProcessorClient) ListAlarms(ctx context.Context, start, stop *time.Time) ([]*Alarm, error) {
	query := url.Values{"order": {"asc"}}
	if start != nil {
		query.Set("start", protocol.FormatISOString(*start))
	}
	if stop != nil {
		query.Set("stop", protocol.FormatISOString(*stop))
	}
	path := fmt.Sprintf("/processors/%s/%s/alarms", p.instance, p.processor)

	var response protocol.ListAlarmsResponseMsg
	if err := p.client.Get(ctx, path, query, &response); err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	alarms := make([]*Alarm, 0, len(response.Alarm))
	for i := range response.Alarm {
		alarm, err := newAlarm(&response.Alarm[i])
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, alarm)
	}
	return alarms, nil
}

// AcknowledgeAlarm 确认一个报警实例。操作落在 (名字, 序号) 指定的实例上，
// 不会误确认同名参数后来产生的报警。
func (p *ProcessorClient) AcknowledgeAlarm(ctx context.Context, alarm *Alarm, comment string) error {
	seqNum, ok := alarm.SequenceNumber()
	if !ok {
		return fmt.Errorf("acknowledge alarm: alarm has no sequence number")
	}
	path := fmt.Sprintf("/processors/%s/%s/parameters%s/alarms/%d",
		p.instance, p.processor, alarm.Name(), seqNum)
	body := protocol.EditAlarmRequestMsg{State: "acknowledged", Comment: comment}
	if err := p.client.Put(ctx, path, body, nil); err != nil {
		return fmt.Errorf("acknowledge alarm: %w", err)
	}
	return nil
}

// SetDefaultCalibrator 设置参数的默认校准器，覆盖已有的默认校准器。
// 条件校准器优先于默认校准器。calibrator 传 nil 表示移除默认校准器。
func (p *ProcessorClient) SetDefaultCalibrator(ctx context.Context, parameter string, calibrator *Calibrator) error {
	request := protocol.ChangeParameterRequestMsg{
		Action: protocol.ActionSetDefaultCalibrator,
	}
	if calibrator != nil {
		info, err := calibrator.toMsg()
		if err != nil {
			return err
		}
		request.DefaultCalibrator = info
	}
	return p.postParameterChange(ctx, parameter, request)
}

// SetCalibrators 设置参数的有序校准器组，覆盖已有的校准器。
// Context 非空的进条件校准器列表（只有第一个匹配的被应用），
// Context 为空的作为默认校准器。
func (p *ProcessorClient) SetCalibrators(ctx context.Context, parameter string, calibrators []Calibrator) error {
	request := protocol.ChangeParameterRequestMsg{
		Action: protocol.ActionSetCalibrators,
	}
	for _, c := range calibrators {
		info, err := c.toMsg()
		if err != nil {
			return err
		}
		if c.Context != "" {
			request.ContextCalibrator = append(request.ContextCalibrator, protocol.ContextCalibratorMsg{
				Context:    c.Context,
				Calibrator: *info,
			})
		} else {
			request.DefaultCalibrator = info
		}
	}
	return p.postParameterChange(ctx, parameter, request)
}

// ClearCalibrators 移除参数的全部校准器
func (p *ProcessorClient) ClearCalibrators(ctx context.Context, parameter string) error {
	if err := p.SetDefaultCalibrator(ctx, parameter, nil); err != nil {
		return err
	}
	return p.SetCalibrators(ctx, parameter, nil)
}

// ResetCalibrators 把参数的校准器恢复为任务数据库里的原始定义
func (p *ProcessorClient) ResetCalibrators(ctx context.Context, parameter string) error {
	request := protocol.ChangeParameterRequestMsg{
		Action: protocol.ActionResetCalibrators,
	}
	return p.postParameterChange(ctx, parameter, request)
}

// SetDefaultAlarmRanges 设置参数的默认报警限值，覆盖已有的默认限值。
// 条件限值组优先于默认限值。ranges 传 nil 表示移除默认限值。
func (p *ProcessorClient) SetDefaultAlarmRanges(ctx context.Context, parameter string, ranges *RangeSet) error {
	request := protocol.ChangeParameterRequestMsg{
		Action: protocol.ActionSetDefaultAlarms,
	}
	if ranges != nil && ranges.hasAnyRange() {
		request.DefaultAlarm = ranges.toMsg()
	}
	return p.postParameterChange(ctx, parameter, request)
}

// SetAlarmRangeSets 设置参数的有序限值组，覆盖已有的限值组。
// Context 非空的进条件限值列表（只有第一个匹配的被应用），
// Context 为空的作为默认限值组。
func (p *ProcessorClient) SetAlarmRangeSets(ctx context.Context, parameter string, sets []RangeSet) error {
	request := protocol.ChangeParameterRequestMsg{
		Action: protocol.ActionSetAlarms,
	}
	for _, rs := range sets {
		info := rs.toMsg()
		if rs.Context != "" {
			request.ContextAlarm = append(request.ContextAlarm, protocol.ContextAlarmMsg{
				Context: rs.Context,
				Alarm:   *info,
			})
		} else {
			request.DefaultAlarm = info
		}
	}
	return p.postParameterChange(ctx, parameter, request)
}

// ClearAlarmRanges 移除参数的全部报警限值
func (p *ProcessorClient) ClearAlarmRanges(ctx context.Context, parameter string) error {
	if err := p.SetDefaultAlarmRanges(ctx, parameter, nil); err != nil {
		return err
	}
	return p.SetAlarmRangeSets(ctx, parameter, nil)
}

// ResetAlarmRanges 把参数的报警限值恢复为任务数据库里的原始定义
func (p *ProcessorClient) ResetAlarmRanges(ctx context.Context, parameter string) error {
	request := protocol.ChangeParameterRequestMsg{
		Action: protocol.ActionResetAlarms,
	}
	return p.postParameterChange(ctx, parameter, request)
}

func (p *ProcessorClient) postParameterChange(ctx context.Context, parameter string, request protocol.ChangeParameterRequestMsg) error {
	path := fmt.Sprintf("/mdb/%s/%s/parameters/%s", p.instance, p.processor, parameter)
	if err := p.client.Post(ctx, path, request, nil); err != nil {
		return fmt.Errorf("change parameter %s: %w", parameter, err)
	}
	return nil
}

// SetAlgorithm 改算法文本（仅脚本算法支持）
func (p *ProcessorClient) SetAlgorithm(ctx context.Context, algorithm, text string) error {
	request := protocol.ChangeAlgorithmRequestMsg{
		Action:    protocol.AlgorithmActionSet,
		Algorithm: &protocol.AlgorithmTextMsg{Text: text},
	}
	return p.postAlgorithmChange(ctx, algorithm, request)
}

// ResetAlgorithm 把算法文本恢复为任务数据库里的原始定义
func (p *ProcessorClient) ResetAlgorithm(ctx context.Context, algorithm string) error {
	request := protocol.ChangeAlgorithmRequestMsg{
		Action: protocol.AlgorithmActionReset,
	}
	return p.postAlgorithmChange(ctx, algorithm, request)
}

func (p *ProcessorClient) postAlgorithmChange(ctx context.Context, algorithm string, request protocol.ChangeAlgorithmRequestMsg) error {
	path := fmt.Sprintf("/mdb/%s/%s/algorithms/%s", p.instance, p.processor, algorithm)
	if err := p.client.Post(ctx, path, request, nil); err != nil {
		return fmt.Errorf("change algorithm %s: %w", algorithm, err)
	}
	return nil
}
