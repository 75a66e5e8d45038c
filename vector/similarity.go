// Package vector 提供匹配引擎的纯计算部分：向量聚合与相似度。
//
// 所有函数都是纯函数：不修改输入、不做 I/O、可并发调用。
// 输入不合法时（维度不一致、缺失、零向量）降级为中性结果，而不是返回错误。
package vector

import (
	"math"

	"github.com/rushteam/mural/core"
)

// Metric 距离度量类型
type Metric string

const (
	MetricCosine       Metric = "cosine"
	MetricInnerProduct Metric = "inner_product"
	MetricEuclidean    Metric = "euclidean"
)

// ParseMetric 解析度量名称，未知名称回退到 cosine。
func ParseMetric(name string) Metric {
	switch Metric(name) {
	case MetricInnerProduct, MetricEuclidean:
		return Metric(name)
	default:
		return MetricCosine
	}
}

// Similarity 按度量计算相似度分数（越大越相似）。
// euclidean 距离转换为 1/(1+d)，维度不一致时为 0。
func Similarity(metric Metric, a, b core.Embedding) float64 {
	switch metric {
	case MetricInnerProduct:
		return InnerProduct(a, b)
	case MetricEuclidean:
		d := EuclideanDistance(a, b)
		if math.IsInf(d, 1) || math.IsNaN(d) {
			return 0
		}
		return 1.0 / (1.0 + d)
	default:
		return CosineSimilarity(a, b)
	}
}

// CosineSimilarity 计算余弦相似度 dot(a,b) / (||a|| * ||b||)。
//
//   - 维度不同或任一向量缺失：0（不可比较）
//   - 任一范数为 0：0（没有信号，不代表最不相似）
//   - 结果为 NaN（输入含 NaN/Inf）：0
//
// 正常情况下取值 [-1, 1]；浮点舍入可能略微越界，这里不做截断。
func CosineSimilarity(a, b core.Embedding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}

// InnerProduct 计算内积，维度不同或缺失时为 0。
func InnerProduct(a, b core.Embedding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	if math.IsNaN(sum) {
		return 0
	}
	return sum
}

// EuclideanDistance 计算欧氏距离，维度不同或缺失时为 +Inf。
func EuclideanDistance(a, b core.Embedding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Norm 计算欧氏范数。
func Norm(v core.Embedding) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
