package core

import "context"

// CatalogSource 是目录数据的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（dataset）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 核心只在一次训练运行期间消费全量快照，不做过滤/分页/缓存
//
// 实现：
//   - dataset.MemorySource（测试/嵌入）
//   - dataset.CSVSource（MovieLens 格式文件）
//   - dataset.GormSource（PostgreSQL）
type CatalogSource interface {
	// Catalog 返回全量目录行，保持数据源的原始顺序
	Catalog(ctx context.Context) ([]CatalogEntry, error)
}

// RatingSource 是评分数据的领域接口，约定同 CatalogSource。
type RatingSource interface {
	// Ratings 返回全量评分行，保持数据源的原始顺序
	Ratings(ctx context.Context) ([]RatingEvent, error)
}
