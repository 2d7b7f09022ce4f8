package services

import (
	"context"
	"errors"
	"strings"

	"redvine/internal/models"
	"redvine/internal/utils"

	"gorm.io/gorm"
)

// 唯一索引冲突时给前端的字段级错误
var (
	ErrEmailTaken    = errors.New("email is already taken")
	ErrUsernameTaken = errors.New("username is already taken")
)

// UserService 账号相关的持久化操作，校验规则留在 handler（薄 API 层）
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register 创建新用户，密码存 bcrypt 哈希
// 唯一索引冲突翻译成 ErrEmailTaken / ErrUsernameTaken
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		msg := err.Error()
		if strings.Contains(msg, "duplicate key value") {
			if strings.Contains(msg, "email") {
				return nil, ErrEmailTaken
			}
			if strings.Contains(msg, "username") {
				return nil, ErrUsernameTaken
			}
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsernameOrEmail 登录入口：带 @ 按邮箱找，否则按用户名找
// 找不到返回 nil，密码校验留给调用方
func (s *UserService) FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	field := "username"
	if strings.Contains(usernameOrEmail, "@") {
		field = "email"
	}

	var user models.User
	err := s.db.WithContext(ctx).Where(field+" = ?", usernameOrEmail).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Get 按 id 查询用户
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail 按邮箱查询用户，找不到返回 nil 而不是错误
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword 重置密码为新哈希
func (s *UserService) ChangePassword(ctx context.Context, userID uint, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", hash).Error
}

// Delete 删除账号，帖子和投票由外键级联删除
func (s *UserService) Delete(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Delete(&models.User{}, userID).Error
}
