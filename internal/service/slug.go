package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

const (
	fallbackSlug = "post"
	// posts.slug 列宽 191，留出 "-N" 后缀的余量
	MaxBaseSlugLength = 180
)

// reservedSlugs 与 /api/posts 下的静态路由同名，裸 slug 视为已占用
var reservedSlugs = map[string]struct{}{
	"mine":    {},
	"related": {},
}

// BaseSlug 标题转 ASCII slug，转不出来时用 "post"
func BaseSlug(title string) string {
	s := slug.Make(title)
	if len(s) > MaxBaseSlugLength {
		s = strings.TrimRight(s[:MaxBaseSlugLength], "-")
	}
	if s == "" {
		return fallbackSlug
	}
	return s
}

// NextSlug 在 existing 中找出 base 或 base-N 的冲突，返回 base-(最大 N + 1)；无冲突返回 base
func NextSlug(base string, existing []string) string {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `(?:-(\d+))?$`)
	maxSuffix := -1
	if _, ok := reservedSlugs[base]; ok {
		maxSuffix = 0
	}
	for _, s := range existing {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		n := 0
		if m[1] != "" {
			v, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			n = v
		}
		if n > maxSuffix {
			maxSuffix = n
		}
	}
	if maxSuffix < 0 {
		return base
	}
	return base + "-" + strconv.Itoa(maxSuffix+1)
}
