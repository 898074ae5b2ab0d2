package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rushteam/movierec/artifact"
	"github.com/rushteam/movierec/content"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/svd"
)

// Trainer 是离线训练流水线：拉取全量快照 → 训练两个引擎 → 写入模型仓库。
// 作为独立批任务运行，与服务进程不共享任何可变状态；
// 训练失败时不写任何产物，服务端继续使用上一代模型。
type Trainer struct {
	Catalog core.CatalogSource
	Ratings core.RatingSource
	Store   core.Store

	// ContentKey / SVDKey 产物存储键，空值用默认
	ContentKey string
	SVDKey     string

	// Config 隐语义模型训练配置，零值走默认
	Config svd.Config

	// Logger 为空时用 slog.Default()
	Logger *slog.Logger
}

func (t *Trainer) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

func (t *Trainer) contentKey() string {
	if t.ContentKey != "" {
		return t.ContentKey
	}
	return DefaultContentKey
}

func (t *Trainer) svdKey() string {
	if t.SVDKey != "" {
		return t.SVDKey
	}
	return DefaultSVDKey
}

// Run 依次训练并保存两个模型，任一失败立即返回。
func (t *Trainer) Run(ctx context.Context) error {
	if err := t.TrainContent(ctx); err != nil {
		return err
	}
	return t.TrainCollaborative(ctx)
}

// TrainContent 构建内容相似度模型并写入模型仓库。
func (t *Trainer) TrainContent(ctx context.Context) error {
	log := t.logger()
	start := time.Now()

	catalog, err := t.Catalog.Catalog(ctx)
	if err != nil {
		return err
	}

	model, err := content.Build(ctx, catalog)
	if err != nil {
		log.Error("content training failed", "err", err)
		return err
	}
	if err := artifact.SaveContent(ctx, t.Store, t.contentKey(), model); err != nil {
		return err
	}

	log.Info("content model trained",
		"movies", len(model.Titles),
		"key", t.contentKey(),
		"elapsed", time.Since(start),
	)
	return nil
}

// TrainCollaborative 训练隐语义模型并写入模型仓库。
// 评分数据为空时返回 EMPTY_DATASET，且不写产物。
func (t *Trainer) TrainCollaborative(ctx context.Context) error {
	log := t.logger()
	start := time.Now()

	ratings, err := t.Ratings.Ratings(ctx)
	if err != nil {
		return err
	}

	model, err := svd.Train(ratings, t.Config)
	if err != nil {
		log.Error("collaborative training failed", "err", err)
		return err
	}
	if err := artifact.SaveSVD(ctx, t.Store, t.svdKey(), model); err != nil {
		return err
	}

	log.Info("collaborative model trained",
		"users", len(model.UserIndex),
		"movies", len(model.ItemIndex),
		"factors", model.Factors,
		"seed", model.Seed,
		"rmse", model.Diagnostics.RMSE,
		"mae", model.Diagnostics.MAE,
		"key", t.svdKey(),
		"elapsed", time.Since(start),
	)
	return nil
}
