package protocol

// 本文件镜像服务器 REST / WebSocket 接口的消息结构。
// 字段名与线上 JSON 逐字对应；可选字段用指针 + omitempty，
// 缺失即 nil，绝不折叠成零值。

// NamedObjectId 参数标识（命名空间可选，缺省表示完全限定名）
type NamedObjectId struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

// ParameterValueMsg 单个参数值（原始值与工程值独立可选）
type ParameterValueMsg struct {
	ID                 *NamedObjectId     `json:"id,omitempty"`
	RawValue           *Value             `json:"rawValue,omitempty"`
	EngValue           *Value             `json:"engValue,omitempty"`
	AcquisitionTimeUTC string             `json:"acquisitionTimeUTC,omitempty"`
	GenerationTimeUTC  string             `json:"generationTimeUTC,omitempty"`
	ExpireMillis       *int64             `json:"expireMillis,omitempty"`
	AcquisitionStatus  *AcquisitionStatus `json:"acquisitionStatus,omitempty"`
	ProcessingStatus   bool               `json:"processingStatus,omitempty"`
	MonitoringResult   *MonitoringResult  `json:"monitoringResult,omitempty"`
	RangeCondition     *RangeCondition    `json:"rangeCondition,omitempty"`
}

// ParameterDataMsg 一批参数值（订阅推送或批量查询响应）
type ParameterDataMsg struct {
	Parameter      []ParameterValueMsg `json:"parameter,omitempty"`
	SubscriptionID *int32              `json:"subscriptionId,omitempty"`
}

// CommandId 命令实例标识（四元组唯一确定一次下发）
type CommandId struct {
	GenerationTime int64   `json:"generationTime"`
	Origin         *string `json:"origin,omitempty"`
	SequenceNumber *int32  `json:"sequenceNumber,omitempty"`
	CommandName    string  `json:"commandName"`
}

// CommandHistoryAttribute 命令历史属性（name/value 对）
type CommandHistoryAttribute struct {
	Name  string `json:"name"`
	Value *Value `json:"value,omitempty"`
}

// CommandHistoryEntryMsg 一条命令历史记录（一次下发的属性增量或全量）
type CommandHistoryEntryMsg struct {
	CommandID         *CommandId                `json:"commandId,omitempty"`
	GenerationTimeUTC string                    `json:"generationTimeUTC,omitempty"`
	Attr              []CommandHistoryAttribute `json:"attr,omitempty"`
}

// CommandQueueEntryMsg 命令队列条目（下发响应的核心载荷）
type CommandQueueEntryMsg struct {
	CmdID             *CommandId `json:"cmdId,omitempty"`
	QueueName         *string    `json:"queueName,omitempty"`
	Username          *string    `json:"username,omitempty"`
	GenerationTimeUTC string     `json:"generationTimeUTC,omitempty"`
	Source            *string    `json:"source,omitempty"`
	UUID              *string    `json:"uuid,omitempty"`
	PendingCommand    *bool      `json:"pendingCommand,omitempty"`
}

// IssueCommandResponseMsg 命令下发响应
type IssueCommandResponseMsg struct {
	CommandQueueEntry *CommandQueueEntryMsg `json:"commandQueueEntry,omitempty"`
	Source            *string               `json:"source,omitempty"`
	Hex               *string               `json:"hex,omitempty"`
	Binary            []byte                `json:"binary,omitempty"`
}

// CommandAssignment 命令参数赋值（值以字符串形式下发）
type CommandAssignment struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IssueCommandRequestMsg 命令下发请求
type IssueCommandRequestMsg struct {
	SequenceNumber int32               `json:"sequenceNumber"`
	Origin         string              `json:"origin"`
	DryRun         bool                `json:"dryRun"`
	Comment        string              `json:"comment,omitempty"`
	Assignment     []CommandAssignment `json:"assignment,omitempty"`
}

// AcknowledgeInfoMsg 报警确认信息（三个字段独立可选）
type AcknowledgeInfoMsg struct {
	AcknowledgedBy     *string `json:"acknowledgedBy,omitempty"`
	AcknowledgeMessage *string `json:"acknowledgeMessage,omitempty"`
	AcknowledgeTimeUTC *string `json:"acknowledgeTimeUTC,omitempty"`
}

// AlarmDataMsg 报警通知（type 区分生命周期阶段）
type AlarmDataMsg struct {
	Type            AlarmEventType      `json:"type"`
	SeqNum          *int32              `json:"seqNum,omitempty"`
	TriggerValue    *ParameterValueMsg  `json:"triggerValue,omitempty"`
	MostSevereValue *ParameterValueMsg  `json:"mostSevereValue,omitempty"`
	CurrentValue    *ParameterValueMsg  `json:"currentValue,omitempty"`
	Violations      *int32              `json:"violations,omitempty"`
	AcknowledgeInfo *AcknowledgeInfoMsg `json:"acknowledgeInfo,omitempty"`
}

// ListAlarmsResponseMsg 报警列表响应
type ListAlarmsResponseMsg struct {
	Alarm []AlarmDataMsg `json:"alarm,omitempty"`
}

// EditAlarmRequestMsg 报警状态变更请求（目前仅 acknowledged）
type EditAlarmRequestMsg struct {
	State   string `json:"state"`
	Comment string `json:"comment,omitempty"`
}

// BulkGetParameterValueRequestMsg 批量取值请求（fromCache/timeout 走查询参数）
type BulkGetParameterValueRequestMsg struct {
	ID []NamedObjectId `json:"id"`
}

// BulkGetParameterValueResponseMsg 批量取值响应（顺序与请求无关，按 id 对齐）
type BulkGetParameterValueResponseMsg struct {
	Value []ParameterValueMsg `json:"value,omitempty"`
}

// SetParameterValueRequest 单个参数写入（批量写入的元素）
type SetParameterValueRequest struct {
	ID    NamedObjectId `json:"id"`
	Value *Value        `json:"value"`
}

// BulkSetParameterValueRequestMsg 批量写值请求
type BulkSetParameterValueRequestMsg struct {
	Request []SetParameterValueRequest `json:"request"`
}

// PolynomialCalibratorMsg 多项式校准器（系数按次数升序）
type PolynomialCalibratorMsg struct {
	Coefficient []float64 `json:"coefficient"`
}

// SplinePointMsg 样条校准点
type SplinePointMsg struct {
	Raw        float64 `json:"raw"`
	Calibrated float64 `json:"calibrated"`
}

// SplineCalibratorMsg 样条校准器（点按 raw 升序）
type SplineCalibratorMsg struct {
	Point []SplinePointMsg `json:"point"`
}

// CalibratorInfoMsg 校准器定义（type 决定哪个子结构有效）
type CalibratorInfoMsg struct {
	Type                 CalibratorKind           `json:"type"`
	PolynomialCalibrator *PolynomialCalibratorMsg `json:"polynomialCalibrator,omitempty"`
	SplineCalibrator     *SplineCalibratorMsg     `json:"splineCalibrator,omitempty"`
}

// ContextCalibratorMsg 条件校准器（context 为匹配表达式）
type ContextCalibratorMsg struct {
	Context    string            `json:"context"`
	Calibrator CalibratorInfoMsg `json:"calibrator"`
}

// AlarmRangeMsg 单级报警区间（开区间，缺省边界表示无界）
type AlarmRangeMsg struct {
	Level        AlarmSeverity `json:"level"`
	MinExclusive *float64      `json:"minExclusive,omitempty"`
	MaxExclusive *float64      `json:"maxExclusive,omitempty"`
}

// AlarmInfoMsg 报警定义（按严重度递增排列的静态区间）
type AlarmInfoMsg struct {
	MinViolations    int32           `json:"minViolations"`
	StaticAlarmRange []AlarmRangeMsg `json:"staticAlarmRange,omitempty"`
}

// ContextAlarmMsg 条件报警定义
type ContextAlarmMsg struct {
	Context string       `json:"context"`
	Alarm   AlarmInfoMsg `json:"alarm"`
}

// ChangeParameterRequestMsg 参数定义变更请求（action 区分六种动作）
type ChangeParameterRequestMsg struct {
	Action            ChangeParameterAction  `json:"action"`
	DefaultCalibrator *CalibratorInfoMsg     `json:"defaultCalibrator,omitempty"`
	ContextCalibrator []ContextCalibratorMsg `json:"contextCalibrator,omitempty"`
	DefaultAlarm      *AlarmInfoMsg          `json:"defaultAlarm,omitempty"`
	ContextAlarm      []ContextAlarmMsg      `json:"contextAlarm,omitempty"`
}

// AlgorithmTextMsg 算法文本载荷
type AlgorithmTextMsg struct {
	Text string `json:"text"`
}

// ChangeAlgorithmRequestMsg 算法定义变更请求
type ChangeAlgorithmRequestMsg struct {
	Action    ChangeAlgorithmAction `json:"action"`
	Algorithm *AlgorithmTextMsg     `json:"algorithm,omitempty"`
}

// LinkInfoMsg 数据链路状态
type LinkInfoMsg struct {
	Instance       string  `json:"instance"`
	Name           string  `json:"name"`
	Type           *string `json:"type,omitempty"`
	Spec           *string `json:"spec,omitempty"`
	Stream         *string `json:"stream,omitempty"`
	Disabled       *bool   `json:"disabled,omitempty"`
	Status         *string `json:"status,omitempty"`
	DataInCount    *int64  `json:"dataInCount,omitempty"`
	DataOutCount   *int64  `json:"dataOutCount,omitempty"`
	DetailedStatus *string `json:"detailedStatus,omitempty"`
}

// ListLinksResponseMsg 链路列表响应
type ListLinksResponseMsg struct {
	Link []LinkInfoMsg `json:"link,omitempty"`
}

// EditLinkRequestMsg 链路启停请求
type EditLinkRequestMsg struct {
	State string `json:"state"` // enabled / disabled
}

// UnitInfoMsg 工程单位
type UnitInfoMsg struct {
	Unit string `json:"unit"`
}

// ParameterTypeInfoMsg 参数类型元数据
type ParameterTypeInfoMsg struct {
	EngType  string        `json:"engType,omitempty"`
	UnitSet  []UnitInfoMsg `json:"unitSet,omitempty"`
	Encoding *string       `json:"dataEncoding,omitempty"`
}

// ParameterInfoMsg 参数定义（任务数据库条目）
type ParameterInfoMsg struct {
	Name             string                `json:"name"`
	QualifiedName    string                `json:"qualifiedName"`
	ShortDescription *string               `json:"shortDescription,omitempty"`
	LongDescription  *string               `json:"longDescription,omitempty"`
	Alias            []NamedObjectId       `json:"alias,omitempty"`
	Type             *ParameterTypeInfoMsg `json:"type,omitempty"`
	DataSource       *string               `json:"dataSource,omitempty"`
}

// ListParametersResponseMsg 参数定义列表响应（分页）
type ListParametersResponseMsg struct {
	Parameters        []ParameterInfoMsg `json:"parameters,omitempty"`
	ContinuationToken *string            `json:"continuationToken,omitempty"`
	TotalSize         *int32             `json:"totalSize,omitempty"`
}

// ContainerInfoMsg 容器定义（任务数据库条目）
type ContainerInfoMsg struct {
	Name             string          `json:"name"`
	QualifiedName    string          `json:"qualifiedName"`
	ShortDescription *string         `json:"shortDescription,omitempty"`
	LongDescription  *string         `json:"longDescription,omitempty"`
	Alias            []NamedObjectId `json:"alias,omitempty"`
	MaxInterval      *int64          `json:"maxInterval,omitempty"`
	BaseContainer    *string         `json:"baseContainer,omitempty"`
}

// ListContainersResponseMsg 容器定义列表响应（分页）
type ListContainersResponseMsg struct {
	Containers        []ContainerInfoMsg `json:"containers,omitempty"`
	ContinuationToken *string            `json:"continuationToken,omitempty"`
	TotalSize         *int32             `json:"totalSize,omitempty"`
}

// BucketInfoMsg 对象存储桶
type BucketInfoMsg struct {
	Name       string `json:"name"`
	Size       *int64 `json:"size,omitempty"`
	NumObjects *int64 `json:"numObjects,omitempty"`
}

// ListBucketsResponseMsg 桶列表响应
type ListBucketsResponseMsg struct {
	Bucket []BucketInfoMsg `json:"bucket,omitempty"`
}

// CreateBucketRequestMsg 建桶请求
type CreateBucketRequestMsg struct {
	Name string `json:"name"`
}

// ObjectInfoMsg 存储对象元数据
type ObjectInfoMsg struct {
	Name       string            `json:"name"`
	CreatedUTC string            `json:"created,omitempty"`
	Size       *int64            `json:"size,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ListObjectsResponseMsg 对象列表响应（prefix 为目录式前缀）
type ListObjectsResponseMsg struct {
	Prefix []string        `json:"prefix,omitempty"`
	Object []ObjectInfoMsg `json:"object,omitempty"`
}

// RESTExceptionMsg 服务器错误载荷（REST 与 WebSocket 共用）
type RESTExceptionMsg struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}
