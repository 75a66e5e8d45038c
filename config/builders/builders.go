package builders

import (
	"fmt"

	"github.com/rushteam/mural/config"
	"github.com/rushteam/mural/pipeline"
	"github.com/rushteam/mural/pkg/conv"
	"github.com/rushteam/mural/rank"
	"github.com/rushteam/mural/rerank"
	"github.com/rushteam/mural/vector"
)

func init() {
	config.Register("rank.similarity", BuildSimilarityNode)
	config.Register("rerank.name_fallback", BuildNameFallbackNode)
	config.Register("rerank.topn", BuildTopNNode)
}

func BuildSimilarityNode(cfg map[string]any) (pipeline.Node, error) {
	metric := conv.ConfigGet(cfg, "metric", string(vector.MetricCosine))
	switch vector.Metric(metric) {
	case vector.MetricCosine, vector.MetricInnerProduct, vector.MetricEuclidean, "":
	default:
		return nil, fmt.Errorf("unknown metric %q (supported: cosine, inner_product, euclidean)", metric)
	}
	tieBreak := conv.ConfigGet(cfg, "tie_break", string(rank.TieBreakNone))
	return &rank.SimilarityNode{Ranker: &rank.Ranker{
		Metric:   vector.ParseMetric(metric),
		TieBreak: rank.ParseTieBreak(tieBreak),
	}}, nil
}

func BuildNameFallbackNode(map[string]any) (pipeline.Node, error) {
	return &rerank.NameFallback{}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	offset := conv.ConfigGetInt64(cfg, "offset", 0)
	if n < 0 || offset < 0 {
		return nil, fmt.Errorf("rerank.topn: n and offset must be >= 0")
	}
	return &rerank.TopNNode{N: int(n), Offset: int(offset)}, nil
}
