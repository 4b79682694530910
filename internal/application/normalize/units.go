// Package normalize 提供查询归一化：尺寸单位换算与术语同义扩展
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// sizeStep 公称尺寸对照：英制英寸 <-> 公制毫米（贸易尺寸的惯用取整，非精确换算）
type sizeStep struct {
	Inch float64
	MM   float64
}

// canonicalSteps 固定公称尺寸表。表外数值线性归入最近的公称档位，
// 偏差超出容差时只保留字面值。
var canonicalSteps = []sizeStep{
	{0.25, 8},
	{0.375, 10},
	{0.5, 15},
	{0.75, 20},
	{1, 25},
	{1.25, 32},
	{1.5, 40},
	{2, 50},
	{2.5, 65},
	{3, 80},
	{3.5, 90},
	{4, 100},
	{5, 125},
	{6, 150},
	{8, 200},
	{10, 250},
	{12, 300},
}

// stepTolerance 公式换算后允许归入公称档位的相对偏差
const stepTolerance = 0.08

const (
	systemImperial = "imperial"
	systemMetric   = "metric"
)

var (
	// 英制：整数、小数、分数（1/2）及带分数（1 1/2），后接 "、in、inch、inches
	imperialPattern = regexp.MustCompile(`(?i)(\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?)\s*(?:"|in\b|inch(?:es)?\b)`)
	// 公制：整数或小数，后接 mm、millimeter(s)、millimetre(s)
	metricPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:mm\b|millimet(?:er|re)s?\b)`)
)

// sizeMatch 文本中识别出的尺寸表达
type sizeMatch struct {
	Value   float64
	System  string
	Literal string
}

// SizeVariants 提取文本中的第一个尺寸表达，返回该公称尺寸在两套单位制下的
// 全部惯用文本形式（单位符号前带/不带空格、缩写与全称）。
// 无可识别的数值+单位模式时返回 nil，这不是错误。
// 表外且超出容差的数值只返回字面值本身，不做跨单位制展开。
func SizeVariants(text string) []string {
	m, ok := detectSize(text)
	if !ok {
		return nil
	}

	inch, mm, ok := reconcile(m)
	if !ok {
		// 超出容差：字面值仍作为一个关键词返回
		return []string{strings.TrimSpace(m.Literal)}
	}

	return renderVariants(inch, mm)
}

// detectSize 找出文本中最先出现的尺寸表达
func detectSize(text string) (sizeMatch, bool) {
	impLoc := imperialPattern.FindStringSubmatchIndex(text)
	metLoc := metricPattern.FindStringSubmatchIndex(text)

	// 两种单位制都出现时取先出现者
	useImperial := impLoc != nil && (metLoc == nil || impLoc[0] <= metLoc[0])

	switch {
	case useImperial:
		raw := text[impLoc[2]:impLoc[3]]
		v, err := parseImperialValue(raw)
		if err != nil {
			return sizeMatch{}, false
		}
		return sizeMatch{Value: v, System: systemImperial, Literal: text[impLoc[0]:impLoc[1]]}, true
	case metLoc != nil:
		raw := text[metLoc[2]:metLoc[3]]
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sizeMatch{}, false
		}
		return sizeMatch{Value: v, System: systemMetric, Literal: text[metLoc[0]:metLoc[1]]}, true
	default:
		return sizeMatch{}, false
	}
}

// parseImperialValue 解析 "8"、"0.5"、"1/2"、"1 1/2" 形式的英制数值
func parseImperialValue(s string) (float64, error) {
	s = strings.TrimSpace(s)

	whole := 0.0
	frac := s
	if i := strings.IndexByte(s, ' '); i >= 0 {
		w, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
		if err != nil {
			return 0, err
		}
		whole = w
		frac = strings.TrimSpace(s[i+1:])
	}

	if num, den, ok := strings.Cut(frac, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			return 0, fmt.Errorf("zero denominator in %q", s)
		}
		return whole + n/d, nil
	}

	v, err := strconv.ParseFloat(frac, 64)
	if err != nil {
		return 0, err
	}
	return whole + v, nil
}

// reconcile 将识别出的尺寸对齐到公称档位，返回两套单位制下的数值。
// 表外数值按 25.4 线性换算后归入最近档位；偏差超出容差时 ok=false。
func reconcile(m sizeMatch) (inch, mm float64, ok bool) {
	// 先查表
	for _, s := range canonicalSteps {
		if m.System == systemImperial && floatEq(m.Value, s.Inch) {
			return s.Inch, s.MM, true
		}
		if m.System == systemMetric && floatEq(m.Value, s.MM) {
			return s.Inch, s.MM, true
		}
	}

	// 线性公式 + 归档。公称档位并非精确的 25.4 倍数（贸易取整），
	// 因此偏差在输入自身的单位制空间内衡量。
	stepValue := func(s sizeStep) float64 {
		if m.System == systemImperial {
			return s.Inch
		}
		return s.MM
	}

	nearest := canonicalSteps[0]
	for _, s := range canonicalSteps[1:] {
		if math.Abs(stepValue(s)-m.Value) < math.Abs(stepValue(nearest)-m.Value) {
			nearest = s
		}
	}
	if math.Abs(stepValue(nearest)-m.Value)/stepValue(nearest) > stepTolerance {
		return 0, 0, false
	}
	return nearest.Inch, nearest.MM, true
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// renderVariants 生成两套单位制下的全部惯用文本形式
func renderVariants(inch, mm float64) []string {
	iv := formatInch(inch)
	mv := formatMM(mm)
	return []string{
		iv + `"`,
		iv + "in",
		iv + " in",
		iv + " inch",
		mv + "mm",
		mv + " mm",
		mv + " millimeter",
	}
}

// formatInch 按贸易惯例格式化英寸值：整数、带分数（1 1/2）或小数
func formatInch(v float64) string {
	whole := math.Floor(v)
	frac := v - whole

	if frac < 1e-9 {
		return strconv.FormatFloat(whole, 'f', -1, 64)
	}

	// 尝试 16 分位以内的分数表示
	n := math.Round(frac * 16)
	if math.Abs(frac*16-n) < 1e-9 && n > 0 {
		num, den := int(n), 16
		for num%2 == 0 {
			num /= 2
			den /= 2
		}
		if whole > 0 {
			return fmt.Sprintf("%d %d/%d", int(whole), num, den)
		}
		return fmt.Sprintf("%d/%d", num, den)
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
