package domain

import "time"

type PostHighlight struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	CoverImage    string `json:"coverImage,omitempty"`
	LikesCount    int64  `json:"likesCount,omitempty"`
	CommentsCount int64  `json:"commentsCount,omitempty"`
	Views         int64  `json:"views,omitempty"`
	AuthorName    string `json:"authorName"`
}

type TopAuthor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	PostCount int64  `json:"postCount"`
}

type RecentUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type DashboardStats struct {
	TotalUsers        int64          `json:"totalUsers"`
	TotalPosts        int64          `json:"totalPosts"`
	TotalComments     int64          `json:"totalComments"`
	TotalLikes        int64          `json:"totalLikes"`
	MostLikedPost     *PostHighlight `json:"mostLikedPost"`
	MostCommentedPost *PostHighlight `json:"mostCommentedPost"`
	MostViewedPost    *PostHighlight `json:"mostViewedPost"`
	TopAuthor         *TopAuthor     `json:"topAuthor"`
	RecentUsers       []RecentUser   `json:"recentUsers"`
}

type Profile struct {
	User               *User `json:"user"`
	TotalPosts         int64 `json:"totalPosts"`
	TotalLikesReceived int64 `json:"totalLikesReceived"`
}
