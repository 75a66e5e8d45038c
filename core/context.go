package core

import "github.com/rushteam/mural/pkg/utils"

// RecommendContext 承载用户/场景信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string
	Scene  string

	// SelectedTags 是当前用户选择的标签集合（顺序无关）
	SelectedTags []string

	// Preference 是缓存的偏好向量；为空表示“尚未个性化”
	Preference Embedding

	// Labels 是用户级标签
	Labels map[string]utils.Label

	// Params 请求级参数（page、page_size 等）
	Params map[string]any
}

// Personalized 判断当前上下文是否带有偏好向量。
func (rctx *RecommendContext) Personalized() bool {
	return rctx != nil && !rctx.Preference.IsAbsent()
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
