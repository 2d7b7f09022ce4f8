package services

import (
	"context"
	"errors"

	"redvine/internal/models"

	"gorm.io/gorm"
)

// PostService 帖子的增删改查，投票和列表不在这里
type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// Create 发布新帖，返回带作者信息的完整记录
func (s *PostService) Create(ctx context.Context, userID uint, title, text string) (*models.Post, error) {
	post := models.Post{
		UserID: userID,
		Title:  title,
		Text:   text,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}

	// 回查一次带出作者
	if err := s.db.WithContext(ctx).Preload("User").First(&post, post.ID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Get 按 id 查询帖子（含作者）
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("User").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update 修改标题和正文，只有作者本人能改
// WHERE 同时带 id 和 user_id，别人的帖子改不到，表现为未找到
func (s *PostService) Update(ctx context.Context, userID, id uint, title, text string) (*models.Post, error) {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"title": title, "text": text})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}
	return s.Get(ctx, id)
}

// Delete 删除帖子，投票行由外键级联清掉
// 帖子不存在返回 ErrPostNotFound，不是自己的返回 ErrNotAuthorized
func (s *PostService) Delete(ctx context.Context, userID, id uint) error {
	var post models.Post
	err := s.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotAuthorized
	}
	return s.db.WithContext(ctx).Delete(&post).Error
}
