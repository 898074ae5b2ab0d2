package svd

import (
	"math"
	"math/rand"

	"github.com/rushteam/movierec/core"
)

// Train 在评分数据上用 SGD 训练隐语义模型。
//
// 算法：逐样本随机梯度下降，最小化平方误差 + 全量 L2 正则。
// 每轮用种子化的随机源重新洗牌，固定种子下结果可复现。
//
// 留出集：训练前按 TestFraction 切出，只用于 RMSE/MAE 诊断，
// 不回灌训练，也不影响最终模型。
func Train(ratings []core.RatingEvent, cfg Config) (*Model, error) {
	if len(ratings) == 0 {
		return nil, core.NewDomainError(core.ModuleSVD, core.ErrorCodeEmptyDataset,
			"svd: no rating events to train on")
	}

	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	// 切分留出集：洗牌后取尾部 TestFraction
	shuffled := make([]core.RatingEvent, len(ratings))
	copy(shuffled, ratings)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	testSize := int(float64(len(shuffled)) * cfg.TestFraction)
	if testSize >= len(shuffled) {
		testSize = 0
	}
	trainSet := shuffled[:len(shuffled)-testSize]
	testSet := shuffled[len(shuffled)-testSize:]
	if len(trainSet) == 0 {
		trainSet = shuffled
		testSet = nil
	}

	m := &Model{
		UserIndex: make(map[int64]int),
		ItemIndex: make(map[int64]int),
		Factors:   cfg.Factors,
		Seed:      cfg.Seed,
		RatingMin: cfg.RatingMin,
		RatingMax: cfg.RatingMax,
	}

	// 词表只来自训练集：留出集里独有的用户/影片对模型而言就是冷启动
	var ratingSum float64
	for _, ev := range trainSet {
		if _, ok := m.UserIndex[ev.UserID]; !ok {
			m.UserIndex[ev.UserID] = len(m.UserIndex)
		}
		if _, ok := m.ItemIndex[ev.MovieID]; !ok {
			m.ItemIndex[ev.MovieID] = len(m.ItemIndex)
		}
		ratingSum += ev.Rating
	}
	m.GlobalBias = ratingSum / float64(len(trainSet))

	nUsers, nItems := len(m.UserIndex), len(m.ItemIndex)
	m.UserBias = make([]float64, nUsers)
	m.ItemBias = make([]float64, nItems)
	m.UserFactors = initFactors(rng, nUsers, cfg.Factors)
	m.ItemFactors = initFactors(rng, nItems, cfg.Factors)

	order := make([]int, len(trainSet))
	for i := range order {
		order[i] = i
	}

	lr, reg := cfg.LearningRate, cfg.Reg
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, idx := range order {
			ev := trainSet[idx]
			u := m.UserIndex[ev.UserID]
			i := m.ItemIndex[ev.MovieID]

			e := ev.Rating - m.rawPredict(u, i)

			m.UserBias[u] += lr * (e - reg*m.UserBias[u])
			m.ItemBias[i] += lr * (e - reg*m.ItemBias[i])

			pu, qi := m.UserFactors[u], m.ItemFactors[i]
			for f := 0; f < cfg.Factors; f++ {
				puf, qif := pu[f], qi[f]
				pu[f] += lr * (e*qif - reg*puf)
				qi[f] += lr * (e*puf - reg*qif)
			}
		}
	}

	m.Diagnostics = evaluate(m, testSet)
	return m, nil
}

// initFactors 用 N(0, 0.1) 初始化隐向量矩阵。
func initFactors(rng *rand.Rand, rows, cols int) [][]float64 {
	factors := make([][]float64, rows)
	for i := range factors {
		row := make([]float64, cols)
		for j := range row {
			row[j] = rng.NormFloat64() * 0.1
		}
		factors[i] = row
	}
	return factors
}

// evaluate 在留出集上计算 RMSE / MAE。
// 留出集中训练词表外的影片跳过（对它们没有可评估的预测）。
func evaluate(m *Model, testSet []core.RatingEvent) Diagnostics {
	if len(testSet) == 0 {
		return Diagnostics{}
	}
	var sqSum, absSum float64
	var n int
	for _, ev := range testSet {
		pred, err := m.Predict(ev.UserID, ev.MovieID)
		if err != nil {
			continue
		}
		diff := ev.Rating - pred
		sqSum += diff * diff
		absSum += math.Abs(diff)
		n++
	}
	if n == 0 {
		return Diagnostics{}
	}
	return Diagnostics{
		RMSE:     math.Sqrt(sqSum / float64(n)),
		MAE:      absSum / float64(n),
		TestSize: n,
	}
}
