package services

import (
	"context"

	"gorm.io/gorm"
)

// VoteService 投票引擎：维护 votes 账本和 posts.points 缓存合计
// 两者的修改必须落在同一个事务里，否则 points 会和账本脱节
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// CastVote 处理一次投票意图，按账本现状三选一：
//
//	没投过     -> 插入一行，points += value
//	已投反方向 -> 更新方向，points += 2*value（抵消旧票再计新票）
//	已投同方向 -> 删除该行（取消投票），points -= value
//
// 返回值仅在新插入一行时为 true，改票和取消都返回 false。
// value 不是 +1 的输入一律按 -1 处理。
func (s *VoteService) CastVote(ctx context.Context, userID, postID uint, value int) (bool, error) {
	if value != 1 {
		value = -1
	}

	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先锁帖子行：既确认帖子存在，又挡住并发的 points 更新
		var postIDs []uint
		if err := tx.Raw(
			"SELECT id FROM posts WHERE id = ? FOR UPDATE", postID,
		).Scan(&postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) == 0 {
			return ErrPostNotFound
		}

		// 再锁该用户在这个帖子上的账本行（如果有）
		var existing []int
		if err := tx.Raw(
			"SELECT value FROM votes WHERE user_id = ? AND post_id = ? FOR UPDATE",
			userID, postID,
		).Scan(&existing).Error; err != nil {
			return err
		}

		switch {
		case len(existing) == 0:
			// 没投过
			if err := tx.Exec(
				"INSERT INTO votes (user_id, post_id, value, created_at, updated_at) VALUES (?, ?, ?, NOW(), NOW())",
				userID, postID, value,
			).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				"UPDATE posts SET points = points + ? WHERE id = ?",
				value, postID,
			).Error; err != nil {
				return err
			}
			created = true
		case existing[0] != value:
			// 改票
			if err := tx.Exec(
				"UPDATE votes SET value = ?, updated_at = NOW() WHERE user_id = ? AND post_id = ?",
				value, userID, postID,
			).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				"UPDATE posts SET points = points + ? WHERE id = ?",
				2*value, postID,
			).Error; err != nil {
				return err
			}
		default:
			// 同方向再投一次 = 取消投票
			if err := tx.Exec(
				"DELETE FROM votes WHERE user_id = ? AND post_id = ?",
				userID, postID,
			).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				"UPDATE posts SET points = points - ? WHERE id = ?",
				value, postID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Status 返回某用户在某帖子上的投票方向，没投过返回 nil
func (s *VoteService) Status(ctx context.Context, userID, postID uint) (*int, error) {
	var values []int
	if err := s.db.WithContext(ctx).Raw(
		"SELECT value FROM votes WHERE user_id = ? AND post_id = ?",
		userID, postID,
	).Scan(&values).Error; err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return &values[0], nil
}
