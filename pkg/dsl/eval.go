package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/movierec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("rec", cel.DynType),
		cel.Variable("label", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Filter 是推荐结果过滤器，使用 CEL (Common Expression Language) 表达式。
// 编译一次，可对任意多条推荐结果复用求值。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：rec.score > 3.0 / rec.score >= 0.5
//   - 标题：rec.title.contains("1995")
//   - 标签：label.recall_source == "popularity"
//   - 逻辑：rec.score > 3.0 && rec.movie_id != 1
//
// 空表达式视为“放行一切”。
type Filter struct {
	expr string
	prg  cel.Program
}

// NewFilter 编译过滤表达式。编译错误立即返回，不延迟到求值时。
func NewFilter(expr string) (*Filter, error) {
	f := &Filter{expr: expr}
	if expr == "" {
		return f, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("dsl: compile %q: %v", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("dsl: program %q: %v", expr, err)
	}
	f.prg = prg
	return f, nil
}

// Match 判断一条推荐是否通过过滤表达式。
func (f *Filter) Match(rec core.Recommendation) (bool, error) {
	if f.prg == nil {
		return true, nil
	}

	out, _, err := f.prg.Eval(buildInput(rec))
	if err != nil {
		// 访问不存在的 key 时 CEL 返回错误；用 label.key != null 检查存在性
		return false, fmt.Errorf("dsl: eval %q: %v", f.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: expression %q must return boolean, got %T", f.expr, out.Value())
	}
	return result, nil
}

// Apply 过滤推荐列表，保持输入顺序。
func (f *Filter) Apply(recs []core.Recommendation) ([]core.Recommendation, error) {
	if f.prg == nil {
		return recs, nil
	}
	out := make([]core.Recommendation, 0, len(recs))
	for _, rec := range recs {
		ok, err := f.Match(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(rec core.Recommendation) map[string]interface{} {
	// label.recall_source 直接取 value，兼容最常见的写法
	labelAccessor := make(map[string]interface{}, len(rec.Labels))
	for k, v := range rec.Labels {
		labelAccessor[k] = v.Value
	}

	return map[string]interface{}{
		"rec": map[string]interface{}{
			"movie_id": rec.MovieID,
			"title":    rec.Title,
			"score":    rec.Score,
		},
		"label": labelAccessor,
	}
}
