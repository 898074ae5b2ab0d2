// Package service 是推荐核心的服务层：离线 Trainer 产出模型产物，
// 在线 Recommender 加载只读快照对外答询。两者之间只通过模型仓库交换状态。
package service

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/rushteam/movierec/artifact"
	"github.com/rushteam/movierec/content"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/dsl"
	"github.com/rushteam/movierec/svd"
)

// 默认的产物存储键
const (
	DefaultContentKey = "content_model"
	DefaultSVDKey     = "collaborative_model"
)

// snapshot 是一代训练产物的只读快照：服务期所有请求共享，不加锁。
type snapshot struct {
	content *content.Model
	svd     *svd.Model
	catalog []core.CatalogEntry
	ratings []core.RatingEvent
}

// state 是服务的当前状态：快照与上次加载错误二者其一。
type state struct {
	snap *snapshot
	err  error
}

// Recommender 是服务期的推荐入口。
//
// 状态机：Uninitialized → Loaded →（稳态）Serving。
//   - Load 失败保持 Uninitialized，所有答询返回底层类型化错误
//     （如 ARTIFACT_NOT_FOUND），直到下一次训练 + Reload 成功
//   - Reload 是原子指针交换：在途请求继续用旧快照，新请求看到新快照，
//     不存在读到半更新矩阵的可能
//
// 依赖全部由构造函数注入（没有进程级单例），测试可以直接替换 fixture。
type Recommender struct {
	store      core.Store
	catalogSrc core.CatalogSource
	ratingSrc  core.RatingSource

	contentKey string
	svdKey     string
	filter     *dsl.Filter
	logger     *slog.Logger

	state atomic.Pointer[state]
}

// Option 配置 Recommender 的可选项。
type Option func(*Recommender)

// WithKeys 覆盖两个产物的存储键。
func WithKeys(contentKey, svdKey string) Option {
	return func(r *Recommender) {
		if contentKey != "" {
			r.contentKey = contentKey
		}
		if svdKey != "" {
			r.svdKey = svdKey
		}
	}
}

// WithFilter 给所有答询结果挂一个 CEL 过滤表达式（如 `rec.score > 3.0`）。
func WithFilter(f *dsl.Filter) Option {
	return func(r *Recommender) { r.filter = f }
}

// WithLogger 覆盖默认 logger。
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recommender) { r.logger = logger }
}

// NewRecommender 构造处于 Uninitialized 状态的服务，需显式 Load 后才能答询。
func NewRecommender(
	s core.Store,
	catalogSrc core.CatalogSource,
	ratingSrc core.RatingSource,
	opts ...Option,
) *Recommender {
	r := &Recommender{
		store:      s,
		catalogSrc: catalogSrc,
		ratingSrc:  ratingSrc,
		contentKey: DefaultContentKey,
		svdKey:     DefaultSVDKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.state.Store(&state{err: core.NewDomainError(core.ModuleService, core.ErrorCodeArtifactNotFound,
		"service: not loaded yet, call Load first")})
	return r
}

// Load 从模型仓库读取两个产物，并从数据源拉取服务期需要的目录/评分快照。
// 任何一步失败都保持 Uninitialized，错误被记录并在后续答询时返回。
func (r *Recommender) Load(ctx context.Context) error {
	snap, err := r.buildSnapshot(ctx)
	if err != nil {
		r.state.Store(&state{err: err})
		r.logger.Warn("recommender load failed", "err", err)
		return err
	}
	r.state.Store(&state{snap: snap})
	r.logger.Info("recommender loaded",
		"store", r.store.Name(),
		"movies", len(snap.catalog),
		"ratings", len(snap.ratings),
	)
	return nil
}

// Reload 加载新一代产物并原子替换快照。失败时保留当前快照继续服务。
func (r *Recommender) Reload(ctx context.Context) error {
	snap, err := r.buildSnapshot(ctx)
	if err != nil {
		r.logger.Warn("recommender reload failed, keeping current snapshot", "err", err)
		return err
	}
	r.state.Store(&state{snap: snap})
	r.logger.Info("recommender reloaded")
	return nil
}

func (r *Recommender) buildSnapshot(ctx context.Context) (*snapshot, error) {
	contentModel, err := artifact.LoadContent(ctx, r.store, r.contentKey)
	if err != nil {
		return nil, err
	}
	svdModel, err := artifact.LoadSVD(ctx, r.store, r.svdKey)
	if err != nil {
		return nil, err
	}
	catalog, err := r.catalogSrc.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := r.ratingSrc.Ratings(ctx)
	if err != nil {
		return nil, err
	}
	return &snapshot{
		content: contentModel,
		svd:     svdModel,
		catalog: catalog,
		ratings: ratings,
	}, nil
}

// Loaded 报告服务是否持有可用快照。
func (r *Recommender) Loaded() bool {
	return r.state.Load().snap != nil
}

// current 返回当前快照；未加载时返回上次的加载错误。
func (r *Recommender) current() (*snapshot, error) {
	st := r.state.Load()
	if st.snap == nil {
		return nil, st.err
	}
	return st.snap, nil
}

// RecommendByTitle 基于内容相似度返回与 title 最相似的 topN 部影片。
func (r *Recommender) RecommendByTitle(ctx context.Context, title string, topN int) ([]core.Recommendation, error) {
	snap, err := r.current()
	if err != nil {
		return nil, err
	}
	recs, err := snap.content.TopSimilar(title, topN)
	if err != nil {
		return nil, err
	}
	return r.applyFilter(recs)
}

// RecommendForUser 基于隐语义模型为用户返回 topN 部未看过的影片。
// 零评分用户走偏置兜底排序，不报错。
func (r *Recommender) RecommendForUser(ctx context.Context, userID int64, topN int) ([]core.Recommendation, error) {
	snap, err := r.current()
	if err != nil {
		return nil, err
	}
	recs, err := svd.Recommend(ctx, snap.svd, snap.ratings, snap.catalog, userID, topN)
	if err != nil {
		return nil, err
	}
	return r.applyFilter(recs)
}

func (r *Recommender) applyFilter(recs []core.Recommendation) ([]core.Recommendation, error) {
	if r.filter == nil {
		return recs, nil
	}
	return r.filter.Apply(recs)
}
