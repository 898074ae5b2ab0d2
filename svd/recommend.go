package svd

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
)

// Recommend 为用户生成 topN 推荐。
//
// 候选生成：目录中用户未评分过的影片（已评分的绝不出现在结果里）。
// 每个候选的打分相互独立，按块并发计算，结果写入预分配切片，与串行一致。
//
// 冷启动：训练集中没出现过的用户照常出分——预测退化为 μ + bi，
// 等价于按影片热度（偏置）排序，结果标记 recall_source=popularity。
//
// 排序：预测分降序，并列按影片 ID 升序，保证确定性。
func Recommend(
	ctx context.Context,
	m *Model,
	ratings []core.RatingEvent,
	catalog []core.CatalogEntry,
	userID int64,
	topN int,
) ([]core.Recommendation, error) {
	if topN <= 0 {
		topN = 10
	}

	// 用户已评分集合：评分数据为空时为空集，全目录都是候选
	rated := make(map[int64]struct{})
	for _, ev := range ratings {
		if ev.UserID == userID {
			rated[ev.MovieID] = struct{}{}
		}
	}

	candidates := make([]core.CatalogEntry, 0, len(catalog))
	for _, entry := range catalog {
		if _, ok := rated[entry.MovieID]; ok {
			continue
		}
		candidates = append(candidates, entry)
	}

	scores := make([]float64, len(candidates))
	eg, _ := errgroup.WithContext(ctx)
	workers := runtime.GOMAXPROCS(0)
	chunk := (len(candidates) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}
	for start := 0; start < len(candidates); start += chunk {
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		lo, hi := start, end
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				score, err := m.Predict(userID, candidates[i].MovieID)
				if err != nil {
					// 目录里训练词表外的影片：没有可用信号，退化为全局均值
					score = m.clip(m.GlobalBias)
				}
				scores[i] = score
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return candidates[order[a]].MovieID < candidates[order[b]].MovieID
	})
	if len(order) > topN {
		order = order[:topN]
	}

	source := "svd"
	if !m.KnowsUser(userID) {
		source = "popularity"
	}

	out := make([]core.Recommendation, 0, len(order))
	for _, idx := range order {
		rec := core.Recommendation{
			MovieID: candidates[idx].MovieID,
			Title:   candidates[idx].Title,
			Score:   scores[idx],
		}
		rec.PutLabel("recall_source", utils.Label{Value: source, Source: "svd"})
		out = append(out, rec)
	}
	return out, nil
}
