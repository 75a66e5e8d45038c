package preference

// 固定的、众所周知的缓存 key。
const (
	KeySelectedTags = "selectedTags"
	KeyPreference   = "userMeanEmbedding"
)

func namespaced(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}
