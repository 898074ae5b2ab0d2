// Package movierec 是一个电影推荐核心（Movie Recommender Core）。
//
// 设计要点：
// - 双引擎：内容相似（TF-IDF + 余弦）与隐语义（SGD 矩阵分解），分数各自独立，不混排
// - 训练/服务分离：Trainer 离线产出版本化模型产物，Recommender 加载只读快照答询
// - 快照原子切换：Reload 走指针交换，在途请求不受影响
package movierec

import "github.com/rushteam/movierec/core"

// 轻量 facade：便于用户直接 import "movierec" 使用核心类型。
type CatalogEntry = core.CatalogEntry
type RatingEvent = core.RatingEvent
type Recommendation = core.Recommendation
type CatalogSource = core.CatalogSource
type RatingSource = core.RatingSource
type Store = core.Store
