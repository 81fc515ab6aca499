package protocol

import (
	"fmt"
	"time"
)

// ValueType 值联合体的类型代码（镜像服务器 Value.type 枚举，不可增删改）
type ValueType int32

const (
	ValueTypeFloat      ValueType = 0
	ValueTypeDouble     ValueType = 1
	ValueTypeUint32     ValueType = 2
	ValueTypeSint32     ValueType = 3
	ValueTypeBinary     ValueType = 4
	ValueTypeString     ValueType = 5
	ValueTypeTimestamp  ValueType = 6
	ValueTypeUint64     ValueType = 7
	ValueTypeSint64     ValueType = 8
	ValueTypeBoolean    ValueType = 9
	ValueTypeAggregate  ValueType = 10
	ValueTypeArray      ValueType = 11
	ValueTypeEnumerated ValueType = 12
	ValueTypeNone       ValueType = 13
)

// Value 带类型标签的值联合体（每次只有与 Type 对应的载荷字段被设置）
type Value struct {
	Type           ValueType       `json:"type"`
	FloatValue     *float64        `json:"floatValue,omitempty"`
	DoubleValue    *float64        `json:"doubleValue,omitempty"`
	Uint32Value    *uint32         `json:"uint32Value,omitempty"`
	Sint32Value    *int32          `json:"sint32Value,omitempty"`
	BinaryValue    []byte          `json:"binaryValue,omitempty"`
	StringValue    *string         `json:"stringValue,omitempty"`
	TimestampValue *int64          `json:"timestampValue,omitempty"`
	Uint64Value    *uint64         `json:"uint64Value,omitempty"`
	Sint64Value    *int64          `json:"sint64Value,omitempty"`
	BooleanValue   *bool           `json:"booleanValue,omitempty"`
	AggregateValue *AggregateValue `json:"aggregateValue,omitempty"`
	ArrayValue     []Value         `json:"arrayValue,omitempty"`
}

// AggregateValue 聚合值（成员名与成员值按下标一一对应）
type AggregateValue struct {
	Name  []string `json:"name"`
	Value []Value  `json:"value"`
}

// DecodeValue 将值联合体解码为 Go 原生值
// 类型代码与载荷不匹配、或出现未知类型代码时返回错误（不允许静默降级为零值）
func DecodeValue(v *Value) (interface{}, error) {
	if v == nil {
		return nil, fmt.Errorf("protocol: cannot decode nil value")
	}
	switch v.Type {
	case ValueTypeFloat:
		if v.FloatValue == nil {
			return nil, missingPayload(v.Type, "floatValue")
		}
		return *v.FloatValue, nil
	case ValueTypeDouble:
		if v.DoubleValue == nil {
			return nil, missingPayload(v.Type, "doubleValue")
		}
		return *v.DoubleValue, nil
	case ValueTypeUint32:
		if v.Uint32Value == nil {
			return nil, missingPayload(v.Type, "uint32Value")
		}
		return *v.Uint32Value, nil
	case ValueTypeSint32:
		if v.Sint32Value == nil {
			return nil, missingPayload(v.Type, "sint32Value")
		}
		return *v.Sint32Value, nil
	case ValueTypeBinary:
		if v.BinaryValue == nil {
			return nil, missingPayload(v.Type, "binaryValue")
		}
		return v.BinaryValue, nil
	case ValueTypeString:
		if v.StringValue == nil {
			return nil, missingPayload(v.Type, "stringValue")
		}
		return *v.StringValue, nil
	case ValueTypeTimestamp:
		if v.TimestampValue == nil {
			return nil, missingPayload(v.Type, "timestampValue")
		}
		return time.UnixMilli(*v.TimestampValue).UTC(), nil
	case ValueTypeUint64:
		if v.Uint64Value == nil {
			return nil, missingPayload(v.Type, "uint64Value")
		}
		return *v.Uint64Value, nil
	case ValueTypeSint64:
		if v.Sint64Value == nil {
			return nil, missingPayload(v.Type, "sint64Value")
		}
		return *v.Sint64Value, nil
	case ValueTypeBoolean:
		if v.BooleanValue == nil {
			return nil, missingPayload(v.Type, "booleanValue")
		}
		return *v.BooleanValue, nil
	case ValueTypeEnumerated:
		// 枚举值以其符号标签传输
		if v.StringValue == nil {
			return nil, missingPayload(v.Type, "stringValue")
		}
		return *v.StringValue, nil
	case ValueTypeAggregate:
		if v.AggregateValue == nil {
			return nil, missingPayload(v.Type, "aggregateValue")
		}
		return decodeAggregate(v.AggregateValue)
	case ValueTypeArray:
		return decodeArray(v.ArrayValue)
	case ValueTypeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("protocol: unknown value type code %d", v.Type)
	}
}

func decodeAggregate(agg *AggregateValue) (interface{}, error) {
	if len(agg.Name) != len(agg.Value) {
		return nil, fmt.Errorf("protocol: aggregate value has %d names but %d values",
			len(agg.Name), len(agg.Value))
	}
	members := make(map[string]interface{}, len(agg.Name))
	for i, name := range agg.Name {
		v := agg.Value[i]
		decoded, err := DecodeValue(&v)
		if err != nil {
			return nil, fmt.Errorf("protocol: aggregate member %q: %w", name, err)
		}
		members[name] = decoded
	}
	return members, nil
}

func decodeArray(values []Value) (interface{}, error) {
	elements := make([]interface{}, 0, len(values))
	for i := range values {
		decoded, err := DecodeValue(&values[i])
		if err != nil {
			return nil, fmt.Errorf("protocol: array element %d: %w", i, err)
		}
		elements = append(elements, decoded)
	}
	return elements, nil
}

func missingPayload(t ValueType, field string) error {
	return fmt.Errorf("protocol: value of type %d is missing its %s payload", t, field)
}

// EncodeValue 将 Go 原生值编码为值联合体（用于写参数等上行场景）
// 仅接受布尔、数值与字符串；其余类型返回错误
func EncodeValue(value interface{}) (*Value, error) {
	switch v := value.(type) {
	case bool:
		return &Value{Type: ValueTypeBoolean, BooleanValue: &v}, nil
	case float32:
		f := float64(v)
		return &Value{Type: ValueTypeFloat, FloatValue: &f}, nil
	case float64:
		return &Value{Type: ValueTypeDouble, DoubleValue: &v}, nil
	case int:
		return encodeInt(int64(v))
	case int32:
		return encodeInt(int64(v))
	case int64:
		return encodeInt(v)
	case string:
		return &Value{Type: ValueTypeString, StringValue: &v}, nil
	default:
		return nil, fmt.Errorf("protocol: unrecognized value type %T", value)
	}
}

// 2^31 以内用 SINT32，否则用 SINT64
func encodeInt(v int64) (*Value, error) {
	if v > 2147483647 || v < -2147483648 {
		return &Value{Type: ValueTypeSint64, Sint64Value: &v}, nil
	}
	n := int32(v)
	return &Value{Type: ValueTypeSint32, Sint32Value: &n}, nil
}
