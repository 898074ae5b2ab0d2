package core

import (
	"strings"

	"github.com/rushteam/movierec/pkg/utils"
)

// CatalogEntry 是影片目录条目：训练快照中的最小物品单元。
// Genres 是已经切分好的标签序列，原始数据中的 "|" 分隔符由数据源负责归一化。
// 进入训练快照后不可变，目录的权威副本在外部目录源中。
type CatalogEntry struct {
	MovieID int64
	Title   string
	Genres  []string
}

// GenreDoc 把标签序列拼成空白分隔的文档，供 TF-IDF 向量化使用。
// 无标签的条目返回空文档，依然参与相似度计算。
func (e CatalogEntry) GenreDoc() string {
	return strings.Join(e.Genres, " ")
}

// RatingEvent 是一条用户评分事件。
// 同一 (user, movie) 出现多条时，以数据源的 last-write 语义为准，核心不做去重。
type RatingEvent struct {
	UserID    int64
	MovieID   int64
	Rating    float64
	Timestamp int64
}

// Recommendation 是推荐链路的统一输出结构。
// Score 的量纲取决于产出引擎：内容相似度在 [0,1]，协同预测分在评分域 [1,5]，
// 两者不可直接混排，归一化是调用方的职责。
// Labels 用于解释与观测（如 recall_source=content/svd/popularity）。
type Recommendation struct {
	MovieID int64
	Title   string
	Score   float64
	Labels  map[string]utils.Label
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (r *Recommendation) PutLabel(key string, lbl utils.Label) {
	if r.Labels == nil {
		r.Labels = make(map[string]utils.Label)
	}
	if old, ok := r.Labels[key]; ok {
		r.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	r.Labels[key] = lbl
}
