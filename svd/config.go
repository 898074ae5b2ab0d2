package svd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 是隐语义模型的训练配置（支持 YAML）。
// 零值字段在训练前用默认值填充，可以只配置关心的项。
type Config struct {
	// Factors 隐向量维度 k
	Factors int `yaml:"factors" json:"factors"`

	// Epochs 训练轮数
	Epochs int `yaml:"epochs" json:"epochs"`

	// LearningRate SGD 学习率
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`

	// Reg L2 正则化强度（作用于所有偏置与隐向量）
	Reg float64 `yaml:"reg" json:"reg"`

	// TestFraction 留出集比例，仅用于 RMSE/MAE 诊断，不参与模型选择
	TestFraction float64 `yaml:"test_fraction" json:"test_fraction"`

	// Seed 随机种子，随模型一起记录，保证复现
	Seed int64 `yaml:"seed" json:"seed"`

	// RatingMin / RatingMax 评分值域，预测结果裁剪到该区间
	RatingMin float64 `yaml:"rating_min" json:"rating_min"`
	RatingMax float64 `yaml:"rating_max" json:"rating_max"`
}

// withDefaults 返回填充默认值后的配置副本。
func (c Config) withDefaults() Config {
	if c.Factors <= 0 {
		c.Factors = 100
	}
	if c.Epochs <= 0 {
		c.Epochs = 20
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.005
	}
	if c.Reg <= 0 {
		c.Reg = 0.02
	}
	if c.TestFraction < 0 || c.TestFraction >= 1 {
		c.TestFraction = 0.25
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.RatingMin == 0 && c.RatingMax == 0 {
		c.RatingMin, c.RatingMax = 1, 5
	}
	return c
}

// LoadConfig 从 YAML 文件加载训练配置。
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("svd: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("svd: parse config: %w", err)
	}
	return cfg, nil
}
