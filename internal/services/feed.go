package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"redvine/internal/models"
	"redvine/internal/utils"

	"gorm.io/gorm"
)

// FeedMaxLimit 单页帖子数量上限，请求再大也压到这个值
const FeedMaxLimit = 50

// AuthorView 列表里随帖子一起返回的作者摘要
type AuthorView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostView 对外返回的帖子视图，正文附带预览截断和渲染后的 HTML
// VoteStatus 是当前查看者自己的投票方向，未登录或未投票时为 null
type PostView struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	TextSnippet string     `json:"text_snippet"`
	HasMoreText bool       `json:"has_more_text"`
	TheRestText string     `json:"the_rest_text"`
	TextHTML    string     `json:"text_html"`
	Points      int        `json:"points"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Author      AuthorView `json:"author"`
	VoteStatus  *int       `json:"vote_status"`
}

// FeedPage 一页帖子加上"后面还有没有"的标记
type FeedPage struct {
	Posts   []PostView `json:"posts"`
	HasMore bool       `json:"has_more"`
}

// FeedService 按时间倒序输出帖子流，游标向前翻页
type FeedService struct {
	db *gorm.DB
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// feedRow 是联表查询的扁平扫描结构
type feedRow struct {
	ID              uint
	Title           string
	Text            string
	Points          int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	AuthorID        uint
	AuthorUsername  string
	AuthorEmail     string
	AuthorCreatedAt time.Time
	AuthorUpdatedAt time.Time
	VoteStatus      *int
}

// ListPosts 返回一页帖子。cursor 是毫秒时间戳字符串，只取创建时间
// 严格早于它的帖子；viewerID 存在时额外带上该用户自己的投票方向。
// 内部多取一条来判断 hasMore，省掉第二次查询。
func (s *FeedService) ListPosts(ctx context.Context, limit int, cursor *string, viewerID *uint) (*FeedPage, error) {
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}
	if limit < 1 {
		limit = 1
	}
	fetchLimit := limit + 1

	// 游标先校验：格式错误整个查询直接失败，不能静默忽略
	var cursorTime *time.Time
	if cursor != nil && *cursor != "" {
		ms, err := strconv.ParseInt(*cursor, 10, 64)
		if err != nil {
			return nil, ErrBadCursor
		}
		t := time.UnixMilli(ms).UTC()
		cursorTime = &t
	}

	var sb strings.Builder
	args := make([]interface{}, 0, 3)

	sb.WriteString(`SELECT p.id, p.title, p.text, p.points, p.created_at, p.updated_at,
	u.id AS author_id, u.username AS author_username, u.email AS author_email,
	u.created_at AS author_created_at, u.updated_at AS author_updated_at, `)
	if viewerID != nil {
		sb.WriteString("v.value AS vote_status ")
	} else {
		sb.WriteString("NULL AS vote_status ")
	}
	sb.WriteString("FROM posts p INNER JOIN users u ON u.id = p.user_id ")
	if viewerID != nil {
		sb.WriteString("LEFT JOIN votes v ON v.post_id = p.id AND v.user_id = ? ")
		args = append(args, *viewerID)
	}
	if cursorTime != nil {
		sb.WriteString("WHERE p.created_at < ? ")
		args = append(args, *cursorTime)
	}
	// id 做第二排序键，避免同一时间戳下翻页顺序不稳定
	sb.WriteString("ORDER BY p.created_at DESC, p.id DESC LIMIT ?")
	args = append(args, fetchLimit)

	var rows []feedRow
	if err := s.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	hasMore := len(rows) == fetchLimit
	if hasMore {
		rows = rows[:limit]
	}

	posts := make([]PostView, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, PostView{
			ID:          r.ID,
			Title:       r.Title,
			Text:        r.Text,
			TextSnippet: utils.Snippet(r.Text),
			HasMoreText: utils.HasMoreText(r.Text),
			TheRestText: utils.RestText(r.Text),
			TextHTML:    utils.RenderMarkdown(r.Text),
			Points:      r.Points,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
			Author: AuthorView{
				ID:        r.AuthorID,
				Username:  r.AuthorUsername,
				Email:     r.AuthorEmail,
				CreatedAt: r.AuthorCreatedAt,
				UpdatedAt: r.AuthorUpdatedAt,
			},
			VoteStatus: r.VoteStatus,
		})
	}

	return &FeedPage{Posts: posts, HasMore: hasMore}, nil
}

// PostViewFromModel 把查出来的 Post（含作者）转换为对外视图
// 详情页走这里，投票状态由调用方按需传入
func PostViewFromModel(p *models.Post, voteStatus *int) PostView {
	return PostView{
		ID:          p.ID,
		Title:       p.Title,
		Text:        p.Text,
		TextSnippet: utils.Snippet(p.Text),
		HasMoreText: utils.HasMoreText(p.Text),
		TheRestText: utils.RestText(p.Text),
		TextHTML:    utils.RenderMarkdown(p.Text),
		Points:      p.Points,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Author: AuthorView{
			ID:        p.User.ID,
			Username:  p.User.Username,
			Email:     p.User.Email,
			CreatedAt: p.User.CreatedAt,
			UpdatedAt: p.User.UpdatedAt,
		},
		VoteStatus: voteStatus,
	}
}
