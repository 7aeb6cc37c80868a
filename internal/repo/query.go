package repo

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// LIKE 转义符统一用 '!'，mysql 的 '\' 在字符串字面量里还要再转义一次
const likeEscape = "!"

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

// containsPattern 大小写不敏感的子串匹配，配合 LOWER(col) 使用
func containsPattern(s string) string {
	return "%" + escapeLike(strings.ToLower(s)) + "%"
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

const (
	likesCountExpr    = "(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = posts.id)"
	commentsCountExpr = "(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = posts.id)"
)

// hoursSinceExpr 返回 (now - posts.created_at) 的小时数表达式及其参数
func hoursSinceExpr(db *gorm.DB, now time.Time) (string, any) {
	now = now.UTC()
	switch db.Dialector.Name() {
	case "postgres":
		return "(EXTRACT(EPOCH FROM (CAST(? AS timestamptz) - posts.created_at)) / 3600.0)", now
	case "mysql":
		return "(TIMESTAMPDIFF(SECOND, posts.created_at, ?) / 3600.0)", now
	default:
		return "((julianday(?) - julianday(posts.created_at)) * 24.0)", now.Format("2006-01-02 15:04:05")
	}
}

func pageArgs(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 10
	}
	return offset, limit
}
