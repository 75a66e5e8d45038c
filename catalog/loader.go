package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/mural/core"
)

// Reader 按来源标识读取原始数据（本地文件路径或 http(s) URL）。
type Reader interface {
	Read(ctx context.Context, source string) ([]byte, error)
}

// SourceReader 是默认 Reader：http(s):// 走 HTTP GET，其余按本地文件读取。
type SourceReader struct {
	client *http.Client
}

// NewSourceReader 创建读取器；timeout 为 0 时默认 10s。
//
// 用法：
//
//	r := catalog.NewSourceReader(5 * time.Second)
//	data, err := r.Read(ctx, "https://example.com/tags.json")
func NewSourceReader(timeout time.Duration) *SourceReader {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &SourceReader{client: &http.Client{Timeout: timeout}}
}

// NewSourceReaderWithClient 使用自定义 HTTP 客户端创建读取器
func NewSourceReaderWithClient(client *http.Client) *SourceReader {
	return &SourceReader{client: client}
}

// Read 实现 Reader。
func (r *SourceReader) Read(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: empty source")
	}
	if !isURL(source) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, fmt.Sprintf("catalog: read %s: %v", source, err))
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, fmt.Sprintf("catalog: build request: %v", err))
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, fmt.Sprintf("catalog: fetch %s: %v", source, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, fmt.Sprintf("catalog: fetch %s: status=%d, body=%s", source, resp.StatusCode, string(body)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, fmt.Sprintf("catalog: read body %s: %v", source, err))
	}
	return data, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Sources 描述一次加载需要的来源。
type Sources struct {
	Tags          string
	Opportunities []string
}

// Snapshot 是一次加载得到的目录快照。
type Snapshot struct {
	Tags          *Tags
	Opportunities *Opportunities
}

// Loader 并发加载标签与机会目录。
type Loader struct {
	Reader Reader

	// OnSourceError 在某个机会来源失败时回调；该来源按空列表处理。
	// 多个来源并发加载，回调可能被同时调用，实现必须是并发安全的。
	OnSourceError func(source string, err error)
}

// NewLoader 创建加载器；reader 为 nil 时使用默认 SourceReader。
func NewLoader(reader Reader) *Loader {
	if reader == nil {
		reader = NewSourceReader(0)
	}
	return &Loader{Reader: reader}
}

// LoadAll 并发读取所有来源。
// 标签目录失败返回错误；单个机会来源失败只影响该来源，对应列表为空。
// 没有向量的机会用其标签向量的平均值补全。
func (l *Loader) LoadAll(ctx context.Context, src Sources) (*Snapshot, error) {
	reader := l.Reader
	if reader == nil {
		reader = NewSourceReader(0)
	}

	var tags *Tags
	perSource := make([][]*core.Opportunity, len(src.Opportunities))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := reader.Read(gctx, src.Tags)
		if err != nil {
			return fmt.Errorf("load tags: %w", err)
		}
		t, err := ParseTags(data)
		if err != nil {
			return fmt.Errorf("load tags: %w", err)
		}
		tags = t
		return nil
	})
	for i, source := range src.Opportunities {
		i, source := i, source
		g.Go(func() error {
			data, err := reader.Read(gctx, source)
			if err == nil {
				perSource[i], err = ParseOpportunities(data)
			}
			if err != nil {
				perSource[i] = nil
				if l.OnSourceError != nil {
					l.OnSourceError(source, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*core.Opportunity
	for _, list := range perSource {
		all = append(all, list...)
	}
	return &Snapshot{
		Tags:          tags,
		Opportunities: NewOpportunities(DeriveEmbeddings(all, tags)),
	}, nil
}
