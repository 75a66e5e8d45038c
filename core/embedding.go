package core

// Embedding 是固定维度的数值向量（标签或机会的语义画像）。
// nil 或长度为 0 表示“缺失”，与全零向量语义不同。
type Embedding []float64

// Dim 返回向量维度。
func (e Embedding) Dim() int { return len(e) }

// IsAbsent 判断向量是否缺失。
func (e Embedding) IsAbsent() bool { return len(e) == 0 }

// Clone 返回不共享底层数组的副本；缺失向量返回 nil。
func (e Embedding) Clone() Embedding {
	if len(e) == 0 {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}
