package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
)

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

func ParsePostStatus(s string) (PostStatus, bool) {
	switch st := PostStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case PostDraft, PostPublished:
		return st, true
	}
	return "", false
}

const (
	ExcerptLength  = 150
	MaxTitleLength = 200 // 与 posts.title 列宽一致
	MaxTagLength   = 64  // 与 post_tags.tag 列宽一致
)

type Image struct {
	URL      string `gorm:"size:512" json:"url"`
	PublicID string `gorm:"size:255" json:"publicId"`
}

func (i Image) Empty() bool { return i.PublicID == "" && i.URL == "" }

// Post 的 Tags 列用于读取，post_tags 表用于按标签过滤
type Post struct {
	ID         string                      `gorm:"primaryKey;size:36" json:"id"`
	Title      string                      `gorm:"size:200;not null" json:"title"`
	Slug       string                      `gorm:"uniqueIndex;size:191;not null" json:"slug"`
	Content    string                      `gorm:"type:text;not null" json:"content"`
	Excerpt    string                      `gorm:"size:255" json:"excerpt"`
	CoverImage Image                       `gorm:"embedded;embeddedPrefix:cover_" json:"coverImage"`
	AuthorID   string                      `gorm:"size:36;index;not null" json:"authorId"`
	Author     *Author                     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Status     PostStatus                  `gorm:"size:16;index;not null;default:draft" json:"status"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`
	Views      int64                       `gorm:"not null;default:0" json:"views"`
	CreatedAt  time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time                   `json:"updatedAt"`
}

type PostLike struct {
	PostID    string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}

type PostTag struct {
	PostID string `gorm:"primaryKey;size:36"`
	Tag    string `gorm:"primaryKey;size:64;index"`
}

// MakeExcerpt 取前 150 个字符，超出补 "..."
func MakeExcerpt(content string) string {
	if utf8.RuneCountInString(content) <= ExcerptLength {
		return content
	}
	r := []rune(content)
	return string(r[:ExcerptLength]) + "..."
}

// NormalizeTags 去空格、小写、去重，保持首次出现顺序
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// FeedItem 公开列表行（计数与热度在查询时计算）
type FeedItem struct {
	Post
	LikesCount    int64   `json:"likesCount"`
	CommentsCount int64   `json:"commentsCount"`
	TrendingScore float64 `json:"trendingScore"`
}

// PostDetail 单篇详情
type PostDetail struct {
	Post
	Likes         []string `json:"likes"`
	LikesCount    int64    `json:"likesCount"`
	CommentsCount int64    `json:"commentsCount"`
	LikedByMe     bool     `json:"likedByMe"`
}

type SlugRef struct {
	ID   string
	Slug string
}

// AdminPostRow 管理端文章列表行
type AdminPostRow struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Status      PostStatus `json:"status"`
	Views       int64      `json:"views"`
	LikesCount  int64      `json:"likesCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	AuthorName  string     `json:"authorName"`
	AuthorEmail string     `json:"authorEmail"`
}

type AdminPostFilter struct {
	Status PostStatus
	Search string
}
