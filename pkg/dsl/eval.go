package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/mural/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("tag", cel.DynType),
			cel.Variable("opportunity", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Eval 是标签分配规则的解释器，使用 CEL (Common Expression Language) 实现。
// 表达式在 NewEval 时编译一次，之后 Match 可以并发调用。
//
// 可用变量：
//   - tag.id / tag.label / tag.category / tag.subcategory / tag.dim
//   - opportunity.id / opportunity.name / opportunity.kind / opportunity.category
//   - opportunity.tags（已有标签 ID 列表）/ opportunity.dim / opportunity.meta
//
// 示例：
//   - `opportunity.kind != "laboratorio" || !(tag.id in ["estagio"])`
//   - `tag.category == "Tecnologia"`
type Eval struct {
	expr string
	prg  cel.Program
}

// NewEval 编译表达式。空表达式表示总是通过。
// 编译失败返回 rule 模块的 INVALID_INPUT 错误。
func NewEval(expr string) (*Eval, error) {
	e := &Eval{expr: expr}
	if expr == "" {
		return e, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRule, core.ErrorCodeInternalError, fmt.Sprintf("rule: cel env: %v", err))
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.NewDomainError(core.ModuleRule, core.ErrorCodeInvalidInput, fmt.Sprintf("rule: compile %q: %v", expr, issues.Err()))
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRule, core.ErrorCodeInvalidInput, fmt.Sprintf("rule: program %q: %v", expr, err))
	}
	e.prg = prg
	return e, nil
}

// MustEval 同 NewEval，编译失败时 panic。只用于常量表达式。
func MustEval(expr string) *Eval {
	e, err := NewEval(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// Expr 返回原始表达式。
func (e *Eval) Expr() string { return e.expr }

// Match 判断 tag 是否可以分配给 opp。
func (e *Eval) Match(tag core.Tag, opp *core.Opportunity) (bool, error) {
	if e == nil || e.prg == nil {
		return true, nil
	}

	out, _, err := e.prg.Eval(map[string]any{
		"tag":         tagInput(tag),
		"opportunity": opportunityInput(opp),
	})
	if err != nil {
		// 访问不存在的 key 会报错，规则里应先判断 has()
		return false, fmt.Errorf("rule: eval %q: %w", e.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, core.NewDomainError(core.ModuleRule, core.ErrorCodeInvalidInput, fmt.Sprintf("rule: %q must return bool, got %T", e.expr, out.Value()))
	}
	return result, nil
}

func tagInput(tag core.Tag) map[string]any {
	return map[string]any{
		"id":          tag.ID,
		"label":       tag.Label,
		"description": tag.Description,
		"category":    tag.Category,
		"subcategory": tag.Subcategory,
		"dim":         int64(tag.Embedding.Dim()),
	}
}

func opportunityInput(opp *core.Opportunity) map[string]any {
	if opp == nil {
		return map[string]any{}
	}
	tags := opp.Tags
	if tags == nil {
		tags = []string{}
	}
	meta := opp.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	return map[string]any{
		"id":       opp.ID,
		"name":     opp.Name,
		"kind":     string(opp.Kind),
		"category": opp.Category,
		"tags":     tags,
		"dim":      int64(opp.Embedding.Dim()),
		"meta":     meta,
	}
}
