package domain

import "strings"

type FeedSort string

const (
	SortRecent   FeedSort = "recent"
	SortOldest   FeedSort = "oldest"
	SortPopular  FeedSort = "popular"
	SortTrending FeedSort = "trending"
)

func ParseFeedSort(s string) (FeedSort, bool) {
	switch st := FeedSort(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return SortRecent, true
	case SortRecent, SortOldest, SortPopular, SortTrending:
		return st, true
	}
	return "", false
}

// 热度公式系数：(3·likes + 2·comments + 0.5·views) / (hours + 2)
const (
	TrendingLikeWeight    = 3.0
	TrendingCommentWeight = 2.0
	TrendingViewWeight    = 0.5
	TrendingHourOffset    = 2.0
)

// TrendingScore 与 SQL 中的热度表达式一致
func TrendingScore(likes, comments, views int64, hoursSinceCreated float64) float64 {
	num := TrendingLikeWeight*float64(likes) + TrendingCommentWeight*float64(comments) + TrendingViewWeight*float64(views)
	return num / (hoursSinceCreated + TrendingHourOffset)
}

type FeedQuery struct {
	Search string
	Tag    string
	Sort   FeedSort
	Offset int
	Limit  int
}

// PageMeta 分页元数据
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPageMeta(page, limit int, total int64) PageMeta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageMeta{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
