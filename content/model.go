package content

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
)

// Model 是基于内容的推荐模型（Content-Based Recommendation）。
//
// 核心思想："类别标签相似的影片，相互相似"
//
// 组成：
//   - 目录快照（MovieIDs / Titles，下标即矩阵行号）
//   - 全量 TF-IDF 余弦相似度矩阵（对称，对角线为 1，值域 [0,1]）
//
// 矩阵是 O(N²) 的一次性训练产物：每个训练代构建一次，经 artifact 包落盘，
// 服务期只读共享，严禁按请求重算。
type Model struct {
	// MovieIDs 按目录顺序排列的影片 ID
	MovieIDs []int64 `json:"movie_ids"`

	// Titles 按目录顺序排列的影片标题
	Titles []string `json:"titles"`

	// Matrix 全量余弦相似度矩阵，Matrix[i][j] ∈ [0,1]
	Matrix [][]float64 `json:"matrix"`
}

// Build 在目录快照上构建内容模型。
//
// 前置校验：
//   - 空目录 → EMPTY_CATALOG
//   - 所有类别文档全空 → INVALID_INPUT（零相似度推荐没有意义，直接拒绝）
//
// 个别空文档是合法的：对应全零向量，与任何向量的相似度为 0，排名自然靠后。
// 相似度矩阵按行并发计算，结果与串行逐位一致。
func Build(ctx context.Context, catalog []core.CatalogEntry) (*Model, error) {
	if len(catalog) == 0 {
		return nil, core.NewDomainError(core.ModuleContent, core.ErrorCodeEmptyCatalog,
			"content: catalog is empty")
	}

	docs := make([]string, len(catalog))
	allBlank := true
	for i, entry := range catalog {
		docs[i] = entry.GenreDoc()
		if strings.TrimSpace(docs[i]) != "" {
			allBlank = false
		}
	}
	if allBlank {
		return nil, core.NewDomainError(core.ModuleContent, core.ErrorCodeInvalidInput,
			"content: all genre documents are blank, nothing to vectorize")
	}

	vectorizer := &Vectorizer{}
	tfidf := vectorizer.FitTransform(docs)

	m := &Model{
		MovieIDs: make([]int64, len(catalog)),
		Titles:   make([]string, len(catalog)),
		Matrix:   make([][]float64, len(catalog)),
	}
	for i, entry := range catalog {
		m.MovieIDs[i] = entry.MovieID
		m.Titles[i] = entry.Title
	}

	// 行向量已 L2 归一化，余弦相似度退化为点积
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range tfidf {
		row := i
		eg.Go(func() error {
			sims := make([]float64, len(tfidf))
			for j := range tfidf {
				if j == row {
					sims[j] = 1
					continue
				}
				sims[j] = dot(tfidf[row], tfidf[j])
			}
			m.Matrix[row] = sims
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// TopSimilar 返回与 title 最相似的 topN 部影片。
//
// 匹配策略：标题精确匹配。
//   - 零匹配 → NOT_FOUND
//   - 多于一个匹配 → AMBIGUOUS_MATCH（绝不静默取第一个）
//
// 排名：按相似度降序稳定排序，并列时保持目录顺序；排除查询影片自身。
func (m *Model) TopSimilar(title string, topN int) ([]core.Recommendation, error) {
	matched := -1
	for i, t := range m.Titles {
		if t != title {
			continue
		}
		if matched >= 0 {
			return nil, core.NewDomainError(core.ModuleContent, core.ErrorCodeAmbiguousMatch,
				fmt.Sprintf("content: title %q matches more than one catalog entry", title))
		}
		matched = i
	}
	if matched < 0 {
		return nil, core.NewDomainError(core.ModuleContent, core.ErrorCodeNotFound,
			fmt.Sprintf("content: title %q not found in catalog", title))
	}

	if topN <= 0 {
		topN = 10
	}

	indices := make([]int, 0, len(m.Titles)-1)
	for i := range m.Titles {
		if i != matched {
			indices = append(indices, i)
		}
	}
	sims := m.Matrix[matched]
	sort.SliceStable(indices, func(a, b int) bool {
		return sims[indices[a]] > sims[indices[b]]
	})
	if len(indices) > topN {
		indices = indices[:topN]
	}

	out := make([]core.Recommendation, 0, len(indices))
	for _, idx := range indices {
		rec := core.Recommendation{
			MovieID: m.MovieIDs[idx],
			Title:   m.Titles[idx],
			Score:   sims[idx],
		}
		rec.PutLabel("recall_source", utils.Label{Value: "content", Source: "content"})
		out = append(out, rec)
	}
	return out, nil
}

// Similarity 返回两个目录行号之间的相似度，越界返回 0。
func (m *Model) Similarity(i, j int) float64 {
	if i < 0 || j < 0 || i >= len(m.Matrix) || j >= len(m.Matrix) {
		return 0
	}
	return m.Matrix[i][j]
}
