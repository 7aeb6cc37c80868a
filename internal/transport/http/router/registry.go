package router

import (
	"sort"

	"column/internal/transport/http/ez"
	"column/internal/transport/http/handler"
)

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 收集业务模块，按优先级挂到 /api
type Registry struct {
	mods []handler.Module
}

func (r *Registry) Register(mods ...handler.Module) {
	r.mods = append(r.mods, mods...)
}

// MountAll 在 /api 上挂载所有已注册的模块
func (r *Registry) MountAll(e ez.EZ, g handler.Guards) {
	mods := append([]handler.Module(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(e, g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
