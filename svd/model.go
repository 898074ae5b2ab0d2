package svd

import (
	"fmt"

	"github.com/rushteam/movierec/core"
)

// Model 是训练完成的隐语义模型（Latent Factor Model）。
//
// 预测公式：score = clip(μ + bu + bi + pu·qi, RatingMin..RatingMax)
//
// 工程特征：
//   - 实时性：好（离线训练，在线查表 + 点积）
//   - 计算复杂度：低（k 维点积）
//   - 冷启动：未知用户退化为偏置排序（等价于按热度排）
//
// 训练完成后不可变；经 artifact 包落盘，服务期只读共享。
type Model struct {
	// GlobalBias 全局平均分 μ
	GlobalBias float64 `json:"global_bias"`

	// UserBias / ItemBias 偏置向量，下标为内部编号
	UserBias []float64 `json:"user_bias"`
	ItemBias []float64 `json:"item_bias"`

	// UserFactors / ItemFactors 隐向量，每行 Factors 维
	UserFactors [][]float64 `json:"user_factors"`
	ItemFactors [][]float64 `json:"item_factors"`

	// UserIndex / ItemIndex 外部 ID -> 内部编号
	UserIndex map[int64]int `json:"user_index"`
	ItemIndex map[int64]int `json:"item_index"`

	// Factors 隐向量维度 k
	Factors int `json:"factors"`

	// Seed 训练时使用的随机种子，随模型记录以便复现
	Seed int64 `json:"seed"`

	// RatingMin / RatingMax 预测裁剪区间
	RatingMin float64 `json:"rating_min"`
	RatingMax float64 `json:"rating_max"`

	// Diagnostics 留出集诊断指标（仅观测用）
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Diagnostics 是训练时在留出集上计算的评估指标。
// 只用于观测与回归对比，不用于模型选择。
type Diagnostics struct {
	RMSE     float64 `json:"rmse"`
	MAE      float64 `json:"mae"`
	TestSize int     `json:"test_size"`
}

// Predict 预测用户对影片的评分。
//
// 边界策略：
//   - 影片不在训练词表 → UNKNOWN_ITEM
//   - 用户不在训练词表 → 退化为 μ + bi（冷启动，不报错）
func (m *Model) Predict(userID, movieID int64) (float64, error) {
	i, ok := m.ItemIndex[movieID]
	if !ok {
		return 0, core.NewDomainError(core.ModuleSVD, core.ErrorCodeUnknownItem,
			fmt.Sprintf("svd: movie %d was not seen at training time", movieID))
	}

	score := m.GlobalBias + m.ItemBias[i]
	if u, ok := m.UserIndex[userID]; ok {
		score += m.UserBias[u] + dot(m.UserFactors[u], m.ItemFactors[i])
	}
	return m.clip(score), nil
}

// KnowsUser 报告用户是否出现在训练数据中。
func (m *Model) KnowsUser(userID int64) bool {
	_, ok := m.UserIndex[userID]
	return ok
}

// clip 把预测分裁剪到评分值域。
func (m *Model) clip(score float64) float64 {
	if score < m.RatingMin {
		return m.RatingMin
	}
	if score > m.RatingMax {
		return m.RatingMax
	}
	return score
}

// rawPredict 返回未裁剪的预测分，训练期的梯度基于它计算。
func (m *Model) rawPredict(u, i int) float64 {
	score := m.GlobalBias + m.ItemBias[i]
	if u >= 0 {
		score += m.UserBias[u] + dot(m.UserFactors[u], m.ItemFactors[i])
	}
	return score
}

// dot 计算两个等长向量的点积。
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
