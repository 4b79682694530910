package normalize

import "strings"

// synonymGroups 建材行业术语同义组（行话 <-> 规范名 <-> 俗名）。
// 组内对称：组内任一术语命中即可带出整组。启动时加载为不可变结构，
// 不暴露运行期修改入口。
var synonymGroups = [][]string{
	{"cmu", "masonry block", "concrete block", "cinder block", "concrete masonry unit"},
	{"rebar", "reinforcing bar", "reinforcement bar", "deformed bar"},
	{"drywall", "sheetrock", "gypsum board", "wallboard"},
	{"plywood", "structural panel", "veneer panel"},
	{"osb", "oriented strand board"},
	{"pvc", "polyvinyl chloride"},
	{"galv", "galvanized", "zinc coated"},
	{"i-beam", "wide flange", "w-beam"},
	{"stud", "framing lumber", "dimensional lumber"},
	{"emt", "electrical metallic tubing", "thinwall conduit"},
	{"batt", "fiberglass insulation", "blanket insulation"},
	{"romex", "nm cable", "nonmetallic sheathed cable"},
	{"hardie board", "fiber cement siding", "cement board siding"},
	{"sill plate", "mudsill", "sole plate"},
}

// Expander 术语同义扩展器，持有启动时装配的只读同义组
type Expander struct {
	groups [][]string
}

// NewExpander 构建扩展器
func NewExpander() *Expander {
	return &Expander{groups: synonymGroups}
}

// Expand 对关键词集合做一层同义扩展。
// 每个映射键与输入关键词（含跨词短语，通过空格拼接整体比对）做子串匹配，
// 命中则带出整组术语；新增术语不再二次扩展，防止语义漂移。
// 未命中的关键词原样保留。
// 返回顺序：输入关键词在前，新增术语按组定义顺序在后，整体去重，确定性输出。
func (e *Expander) Expand(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))

	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	// 跨词短语键（如 "masonry block"）对拼接后的整体做匹配
	joined := strings.Join(out, " ")

	// 只对原始输入做一层扩展
	inputs := out[:len(out):len(out)]
	for _, group := range e.groups {
		if !groupMatches(group, joined, inputs) {
			continue
		}
		for _, term := range group {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}

	return out
}

// groupMatches 判断同义组中是否存在命中输入的键
func groupMatches(group []string, joined string, keywords []string) bool {
	for _, key := range group {
		if strings.Contains(joined, key) {
			return true
		}
		for _, kw := range keywords {
			if strings.Contains(kw, key) {
				return true
			}
		}
	}
	return false
}
