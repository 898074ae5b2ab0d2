package dataset

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rushteam/movierec/core"
)

// MovieRow 是 movies 表的 GORM 映射。Genres 保留原始 '|' 分隔串，读取时归一化。
type MovieRow struct {
	MovieID int64  `gorm:"column:movie_id;primaryKey"`
	Title   string `gorm:"column:title"`
	Genres  string `gorm:"column:genres"`
}

func (MovieRow) TableName() string { return "movies" }

// RatingRow 是 ratings 表的 GORM 映射。
type RatingRow struct {
	UserID    int64   `gorm:"column:user_id;index"`
	MovieID   int64   `gorm:"column:movie_id;index"`
	Rating    float64 `gorm:"column:rating"`
	Timestamp int64   `gorm:"column:timestamp"`
}

func (RatingRow) TableName() string { return "ratings" }

// GormSource 从关系库读取训练快照，周边应用（ETL 脚本、Web 层）负责写入。
// 读取按主键/自然顺序排序，保证同一库状态下快照顺序稳定。
type GormSource struct {
	db *gorm.DB
}

// NewGormSource 用已建立的 *gorm.DB 构造数据源（测试可注入 sqlite/mock）。
func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

// OpenPostgres 按 DSN 连接 PostgreSQL 并构造数据源。
func OpenPostgres(dsn string) (*GormSource, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return &GormSource{db: db}, nil
}

func (s *GormSource) Catalog(ctx context.Context) ([]core.CatalogEntry, error) {
	var rows []MovieRow
	if err := s.db.WithContext(ctx).Order("movie_id").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]core.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, core.CatalogEntry{
			MovieID: row.MovieID,
			Title:   row.Title,
			Genres:  SplitGenres(row.Genres),
		})
	}
	return entries, nil
}

func (s *GormSource) Ratings(ctx context.Context) ([]core.RatingEvent, error) {
	var rows []RatingRow
	if err := s.db.WithContext(ctx).Order("user_id, movie_id").Find(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]core.RatingEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, core.RatingEvent{
			UserID:    row.UserID,
			MovieID:   row.MovieID,
			Rating:    row.Rating,
			Timestamp: row.Timestamp,
		})
	}
	return events, nil
}

var (
	_ core.CatalogSource = (*GormSource)(nil)
	_ core.RatingSource  = (*GormSource)(nil)
)
