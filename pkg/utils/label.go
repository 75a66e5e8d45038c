package utils

import (
	"strconv"
	"strings"
)

// Label 是 Feed 链路中的可解释信息：来自哪个召回源、用了哪种度量、是否个性化。
// Value 可以是 '|' 分隔的多个值（同一机会被多个召回源命中时）。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / rank / rerank / pipeline
}

// FlagLabel 返回布尔 label，例如 rank_personalized=true。
func FlagLabel(source string, v bool) Label {
	return Label{Value: strconv.FormatBool(v), Source: source}
}

// Values 返回 Value 拆分后的各个值。
func (l Label) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, "|")
}

// Has 判断 Value 中是否已包含 v。
func (l Label) Has(v string) bool {
	for _, x := range l.Values() {
		if x == v {
			return true
		}
	}
	return false
}

// MergeLabel 合并同名 Label：
// - Value: 以 '|' 累积，已有的值不重复（同一链路重复执行时 label 不膨胀）
// - Source: 以 ',' 累积，同样不重复
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	for _, v := range incoming.Values() {
		if !merged.Has(v) {
			merged.Value += "|" + v
		}
	}
	merged.Source = mergeSource(existing.Source, incoming.Source)
	return merged
}

func mergeSource(existing, incoming string) string {
	switch {
	case existing == "":
		return incoming
	case incoming == "":
		return existing
	}
	for _, s := range strings.Split(existing, ",") {
		if s == incoming {
			return existing
		}
	}
	return existing + "," + incoming
}
