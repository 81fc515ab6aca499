package protocol

import "encoding/json"

// WebSocket 信封：客户端每条出站消息带自增 requestId，
// 服务器以 REPLY（replyTo 回指）确认订阅，随后以 DATA 推送数据。

// 服务器消息类型
const (
	MessageTypeReply     = "REPLY"
	MessageTypeData      = "DATA"
	MessageTypeException = "EXCEPTION"
)

// DATA 载荷类型
const (
	DataTypeParameter      = "PARAMETER"
	DataTypeCommandHistory = "CMD_HISTORY"
	DataTypeAlarmData      = "ALARM_DATA"
)

// WebSocketRequest 客户端请求信封
type WebSocketRequest struct {
	RequestID int64       `json:"requestId"`
	Resource  string      `json:"resource"`
	Operation string      `json:"operation"`
	Data      interface{} `json:"data,omitempty"`
}

// WebSocketData 服务器 DATA 载荷（type 决定哪个字段有效）
type WebSocketData struct {
	Type          string                  `json:"type"`
	ParameterData *ParameterDataMsg       `json:"parameterData,omitempty"`
	Command       *CommandHistoryEntryMsg `json:"command,omitempty"`
	AlarmData     *AlarmDataMsg           `json:"alarmData,omitempty"`
}

// WebSocketServerMessage 服务器消息信封
type WebSocketServerMessage struct {
	Type      string            `json:"type"`
	ReplyTo   *int64            `json:"replyTo,omitempty"`
	Reply     json.RawMessage   `json:"reply,omitempty"`
	Data      *WebSocketData    `json:"data,omitempty"`
	Exception *RESTExceptionMsg `json:"exception,omitempty"`
}

// ParameterSubscriptionReplyMsg 参数订阅 REPLY 载荷
type ParameterSubscriptionReplyMsg struct {
	SubscriptionID *int32            `json:"subscriptionId,omitempty"`
	Invalid        []NamedObjectId   `json:"invalid,omitempty"`
	Exception      *RESTExceptionMsg `json:"exception,omitempty"`
}

// ParameterSubscriptionRequestMsg 参数订阅请求载荷
// subscriptionId 为 -1 表示建新订阅；增量 subscribe/unsubscribe 带已分配的 id
type ParameterSubscriptionRequestMsg struct {
	SubscriptionID     int32           `json:"subscriptionId"`
	ID                 []NamedObjectId `json:"id"`
	AbortOnInvalid     bool            `json:"abortOnInvalid,omitempty"`
	UpdateOnExpiration bool            `json:"updateOnExpiration,omitempty"`
	SendFromCache      bool            `json:"sendFromCache,omitempty"`
}

// CommandHistorySubscriptionRequestMsg 命令历史订阅请求载荷
type CommandHistorySubscriptionRequestMsg struct {
	IgnorePastCommands bool        `json:"ignorePastCommands"`
	CommandID          []CommandId `json:"commandId,omitempty"`
}
