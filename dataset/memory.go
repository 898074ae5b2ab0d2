// Package dataset 提供目录源 / 评分源的基础设施实现。
// 接口定义在 core 包（依赖倒置），核心算法不感知数据来自内存、CSV 还是数据库。
package dataset

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// MemorySource 是内存切片实现的数据源，用于测试与嵌入场景。
// 同时实现 core.CatalogSource 与 core.RatingSource。
type MemorySource struct {
	Movies []core.CatalogEntry
	Events []core.RatingEvent
}

func (s *MemorySource) Catalog(ctx context.Context) ([]core.CatalogEntry, error) {
	return s.Movies, nil
}

func (s *MemorySource) Ratings(ctx context.Context) ([]core.RatingEvent, error) {
	return s.Events, nil
}

var (
	_ core.CatalogSource = (*MemorySource)(nil)
	_ core.RatingSource  = (*MemorySource)(nil)
)
