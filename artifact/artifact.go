// Package artifact 是模型仓库：把训练产物序列化为版本化的信封并经 core.Store 落盘。
//
// 设计要点：
//   - 训练与服务解耦：训练期写入，服务期只读加载
//   - 信封显式记录 schema 版本与产物类型，加载时先校验再解码，
//     版本/类型不匹配是类型化错误而非静默损坏
//   - key 缺失映射为 ARTIFACT_NOT_FOUND，与存储层瞬时故障可区分
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rushteam/movierec/content"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/svd"
)

// SchemaVersion 是当前信封格式版本，字段布局变化时递增。
const SchemaVersion = 1

// 产物类型
const (
	KindContent = "content" // 相似度矩阵 + 目录快照
	KindSVD     = "svd"     // 隐语义模型
)

// envelope 是落盘的统一信封。Payload 按 Kind 解码为对应的模型结构。
type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Kind          string          `json:"kind"`
	CreatedAt     int64           `json:"created_at"`
	Payload       json.RawMessage `json:"payload"`
}

// SaveContent 将内容模型写入 store，key 即产物标识（习惯上是文件名/存储键）。
func SaveContent(ctx context.Context, s core.Store, key string, m *content.Model) error {
	return save(ctx, s, key, KindContent, m)
}

// SaveSVD 将隐语义模型写入 store。
func SaveSVD(ctx context.Context, s core.Store, key string, m *svd.Model) error {
	return save(ctx, s, key, KindSVD, m)
}

// LoadContent 从 store 加载内容模型。
// key 不存在 → ARTIFACT_NOT_FOUND；类型/版本不符 → SCHEMA_MISMATCH。
func LoadContent(ctx context.Context, s core.Store, key string) (*content.Model, error) {
	env, err := load(ctx, s, key, KindContent)
	if err != nil {
		return nil, err
	}
	var m content.Model
	if err := json.Unmarshal(env.Payload, &m); err != nil {
		return nil, fmt.Errorf("artifact: decode content payload %q: %w", key, err)
	}
	return &m, nil
}

// LoadSVD 从 store 加载隐语义模型，错误约定同 LoadContent。
func LoadSVD(ctx context.Context, s core.Store, key string) (*svd.Model, error) {
	env, err := load(ctx, s, key, KindSVD)
	if err != nil {
		return nil, err
	}
	var m svd.Model
	if err := json.Unmarshal(env.Payload, &m); err != nil {
		return nil, fmt.Errorf("artifact: decode svd payload %q: %w", key, err)
	}
	return &m, nil
}

func save(ctx context.Context, s core.Store, key, kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("artifact: encode %s payload: %w", kind, err)
	}
	env := envelope{
		SchemaVersion: SchemaVersion,
		Kind:          kind,
		CreatedAt:     time.Now().Unix(),
		Payload:       raw,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("artifact: encode envelope: %w", err)
	}
	return s.Set(ctx, key, data)
}

func load(ctx context.Context, s core.Store, key, wantKind string) (*envelope, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeArtifactNotFound,
				fmt.Sprintf("artifact: %q not found, train a model first", key))
		}
		// 存储层瞬时故障原样透传，调用方据此区分“未训练”与“存储异常”
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeSchemaMismatch,
			fmt.Sprintf("artifact: %q is not a valid envelope: %v", key, err))
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeSchemaMismatch,
			fmt.Sprintf("artifact: %q has schema version %d, want %d", key, env.SchemaVersion, SchemaVersion))
	}
	if env.Kind != wantKind {
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeSchemaMismatch,
			fmt.Sprintf("artifact: %q holds kind %q, want %q", key, env.Kind, wantKind))
	}
	return &env, nil
}
