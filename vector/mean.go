package vector

import "github.com/rushteam/mural/core"

// Mean 计算一组向量的逐分量算术平均值（不做归一化）。
// 规则见 MeanStats；缺失结果返回 nil。
func Mean(vectors []core.Embedding) core.Embedding {
	mean, _ := MeanStats(vectors)
	return mean
}

// MeanStats 计算平均向量，并返回因维度不一致被跳过的向量个数。
//
// 规则：
//   - 参考维度取自第一个非缺失向量；缺失向量（nil/空）不参与计算
//   - 与参考维度不同的向量被跳过，既不累加，也不计入除数
//   - 没有任何可用向量时返回 nil（缺失），而不是零向量
//   - 只有一个可用向量时，结果与其逐元素相等
//
// 浮点加法只在舍入意义上满足交换律，非常大的输入集合可能对输入顺序有微小敏感。
func MeanStats(vectors []core.Embedding) (core.Embedding, int) {
	dim := 0
	for _, v := range vectors {
		if len(v) > 0 {
			dim = len(v)
			break
		}
	}
	if dim == 0 {
		return nil, 0
	}

	sum := make(core.Embedding, dim)
	count, skipped := 0, 0
	for _, v := range vectors {
		if len(v) == 0 {
			continue
		}
		if len(v) != dim {
			skipped++
			continue
		}
		for i, x := range v {
			sum[i] += x
		}
		count++
	}

	n := float64(count)
	for i := range sum {
		sum[i] /= n
	}
	return sum, skipped
}
