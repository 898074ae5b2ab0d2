package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rushteam/movierec/core"
)

// FileStore 是文件系统实现的 Store：key 即目录下的文件名。
// 对应传统的“模型目录”约定（content_model / collaborative_model 各占一个文件），
// 单机部署无需外部依赖即可持久化训练产物。
//
// 写入先落临时文件再 rename，同一文件系统内 rename 原子，
// 读侧不会看到半写状态。不支持 TTL。
type FileStore struct {
	dir string
}

// NewFileStore 创建以 dir 为根的文件存储，目录不存在时自动创建。
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Name() string { return "file" }

// path 把 key 映射为目录内路径，路径分隔符替换为下划线，防止逃逸出根目录。
func (f *FileStore) path(key string) string {
	key = strings.ReplaceAll(key, string(os.PathSeparator), "_")
	key = strings.ReplaceAll(key, "..", "_")
	return filepath.Join(f.dir, key)
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrStoreNotFound
		}
		return nil, err
	}
	return data, nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	if len(ttl) > 0 && ttl[0] > 0 {
		return core.ErrStoreNotSupported
	}
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		data, err := f.Get(ctx, k)
		if err != nil {
			if core.IsStoreNotFound(err) {
				continue
			}
			return nil, err
		}
		result[k] = data
	}
	return result, nil
}

func (f *FileStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	for k, v := range kvs {
		if err := f.Set(ctx, k, v, ttl...); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

var _ core.Store = (*FileStore)(nil)
