package tmtc

import (
	"fmt"
	"strings"

	"astrolink-client/protocol"
)

// 校准器与报警限值是调用方构造后提交给服务器的纯值对象，方向与其余模型相反。

// 校准器类型
const (
	// CalibratorTypePolynomial 多项式校准：y = a + b·x + c·x² + …
	CalibratorTypePolynomial = "polynomial"
	// CalibratorTypeSpline 样条校准：按点列做分段线性插值
	CalibratorTypeSpline = "spline"
)

// SplinePoint 样条曲线上的一个点
type SplinePoint struct {
	Raw        float64
	Calibrated float64
}

// Calibrator 应用于数值型原始值的校准定义。
// Context 为空串表示默认校准器，仅在没有条件校准器匹配时生效；
// 非空时是服务器解释的适用条件表达式。
type Calibrator struct {
	Context string
	Type    string
	// Coefficients 多项式系数 [a, b, c, ...]，按次数升序（仅 polynomial）
	Coefficients []float64
	// Points 插值点列，调用方保证按 Raw 升序给出，此处不校验（仅 spline）
	Points []SplinePoint
}

// NewPolynomialCalibrator 构造多项式校准器
func NewPolynomialCalibrator(context string, coefficients ...float64) Calibrator {
	return Calibrator{
		Context:      context,
		Type:         CalibratorTypePolynomial,
		Coefficients: coefficients,
	}
}

// NewSplineCalibrator 构造样条校准器
func NewSplineCalibrator(context string, points ...SplinePoint) Calibrator {
	return Calibrator{
		Context: context,
		Type:    CalibratorTypeSpline,
		Points:  points,
	}
}

// toMsg 序列化为线上定义；未知类型报错
func (c Calibrator) toMsg() (*protocol.CalibratorInfoMsg, error) {
	switch strings.ToLower(c.Type) {
	case CalibratorTypePolynomial:
		return &protocol.CalibratorInfoMsg{
			Type: protocol.CalibratorPolynomial,
			PolynomialCalibrator: &protocol.PolynomialCalibratorMsg{
				Coefficient: c.Coefficients,
			},
		}, nil
	case CalibratorTypeSpline:
		points := make([]protocol.SplinePointMsg, 0, len(c.Points))
		for _, p := range c.Points {
			points = append(points, protocol.SplinePointMsg{Raw: p.Raw, Calibrated: p.Calibrated})
		}
		return &protocol.CalibratorInfoMsg{
			Type:             protocol.CalibratorSpline,
			SplineCalibrator: &protocol.SplineCalibratorMsg{Point: points},
		}, nil
	default:
		return nil, fmt.Errorf("unrecognized calibrator type %q", c.Type)
	}
}

// FloatRange 开区间 (Lo, Hi)；nil 边界表示该侧无界
type FloatRange struct {
	Lo *float64
	Hi *float64
}

// Range 便捷构造双边区间
func Range(lo, hi float64) *FloatRange {
	return &FloatRange{Lo: &lo, Hi: &hi}
}

// RangeSet 在某一条件下生效的一组报警限值。
// 五个级别按严重度递增排列，各自独立可缺省；区间是否正确嵌套由服务器负责。
// Context 为空串表示默认限值组。
type RangeSet struct {
	Context  string
	Watch    *FloatRange
	Warning  *FloatRange
	Distress *FloatRange
	Critical *FloatRange
	Severe   *FloatRange
	// MinViolations 连续越限多少次才产生报警（服务器侧执行），最小 1
	MinViolations int32
}

func (r RangeSet) hasAnyRange() bool {
	return r.Watch != nil || r.Warning != nil || r.Distress != nil ||
		r.Critical != nil || r.Severe != nil
}

// toMsg 序列化为线上定义：按严重度升序只附带配置了的级别，
// MinViolations 小于 1 时按 1 下发
func (r RangeSet) toMsg() *protocol.AlarmInfoMsg {
	minViolations := r.MinViolations
	if minViolations < 1 {
		minViolations = 1
	}
	info := &protocol.AlarmInfoMsg{MinViolations: minViolations}

	appendRange := func(fr *FloatRange, level protocol.AlarmSeverity) {
		if fr == nil {
			return
		}
		info.StaticAlarmRange = append(info.StaticAlarmRange, protocol.AlarmRangeMsg{
			Level:        level,
			MinExclusive: fr.Lo,
			MaxExclusive: fr.Hi,
		})
	}
	appendRange(r.Watch, protocol.SeverityWatch)
	appendRange(r.Warning, protocol.SeverityWarning)
	appendRange(r.Distress, protocol.SeverityDistress)
	appendRange(r.Critical, protocol.SeverityCritical)
	appendRange(r.Severe, protocol.SeveritySevere)
	return info
}
