package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// errEmpty 让 GetOrLoad 跳过写缓存，空结果不占 key
var errEmpty = errors.New("cache: empty value")

// GetOrLoadJSON 按 JSON 存取。load 返回 nil 时不缓存；
// 缓存里的旧数据解不开（类型改过字段）时删 key 再回源一次
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration,
	load func(ctx context.Context) (*T, error)) (*T, error) {
	var fresh *T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if v == nil {
			return nil, errEmpty
		}
		fresh = v
		return json.Marshal(v)
	})
	switch {
	case errors.Is(err, errEmpty):
		return nil, nil
	case err != nil:
		return nil, err
	case fresh != nil:
		return fresh, nil
	}

	out := new(T)
	if json.Unmarshal(b, out) == nil {
		return out, nil
	}
	_ = c.Delete(ctx, key)
	v, err := load(ctx)
	if err != nil || v == nil {
		return v, err
	}
	if nb, e := json.Marshal(v); e == nil {
		_ = c.RDB.Set(ctx, key, nb, ttl).Err()
	}
	return v, nil
}
