// Package mural 把大学机会（实验室、EJ、竞赛队伍）与用户选择的标签做向量匹配。
//
// 设计要点：
// - 偏好向量 = 已选标签向量的平均值；集合为空时缓存被清除（“尚未个性化”）
// - 排序 = 余弦相似度降序，稳定排序；没有偏好向量时分数为 0 并按名称回退
// - Pipeline-first: Feed 通过 Node 串联（Recall → Rank → ReRank）
// - Labels-first: labels 全链路透传，记录召回来源、度量与是否个性化
package mural

import (
	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pipeline"
	"github.com/rushteam/mural/vector"
)

// 轻量 facade：便于直接 import "mural" 使用核心抽象。
type (
	Pipeline  = pipeline.Pipeline
	Node      = pipeline.Node
	Kind      = pipeline.Kind
	Embedding = core.Embedding
)

const (
	KindRecall      = pipeline.KindRecall
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// Mean 返回向量的平均值，见 vector.Mean。
func Mean(vectors []Embedding) Embedding { return vector.Mean(vectors) }

// Cosine 返回两个向量的余弦相似度，见 vector.CosineSimilarity。
func Cosine(a, b Embedding) float64 { return vector.CosineSimilarity(a, b) }
