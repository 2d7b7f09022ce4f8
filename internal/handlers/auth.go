package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"redvine/internal/middleware"
	"redvine/internal/services"
	"redvine/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// 密码重置 token 在缓存里的 key 前缀和有效期
const (
	forgotPasswordPrefix = "forgot-password:"
	forgotPasswordTTL    = 3 * 24 * time.Hour
)

type AuthHandler struct {
	userService *services.UserService
	mailService *services.MailService
	cache       *utils.GlobalCache
}

func NewAuthHandler(userService *services.UserService, mailService *services.MailService, cache *utils.GlobalCache) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		mailService: mailService,
		cache:       cache,
	}
}

type registerInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// 校验规则沿用老约定：用户名和密码都要超过 2 个字符（按字符数，不是字节数）
	if utf8.RuneCountInString(input.Username) <= 2 {
		RenderFieldErrors(c, http.StatusBadRequest, FieldError{Field: "username", Message: "username is too short"})
		return
	}
	if utf8.RuneCountInString(input.Password) <= 2 {
		RenderFieldErrors(c, http.StatusBadRequest, FieldError{Field: "password", Message: "password is too short"})
		return
	}
	if !strings.Contains(input.Email, "@") {
		RenderFieldErrors(c, http.StatusBadRequest, FieldError{Field: "email", Message: "wrong email pattern"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		switch err {
		case services.ErrEmailTaken:
			RenderFieldErrors(c, http.StatusConflict, FieldError{Field: "email", Message: "email is already taken"})
		case services.ErrUsernameTaken:
			RenderFieldErrors(c, http.StatusConflict, FieldError{Field: "username", Message: "username is already taken"})
		default:
			RenderError(c, http.StatusInternalServerError, "failed to register")
		}
		return
	}

	// 注册即登录
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type loginInput struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.FindByUsernameOrEmail(c.Request.Context(), input.UsernameOrEmail)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to log in")
		return
	}
	if user == nil {
		RenderFieldErrors(c, http.StatusUnauthorized, FieldError{Field: "usernameOrEmail", Message: "that user doesn't exist"})
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		RenderFieldErrors(c, http.StatusUnauthorized, FieldError{Field: "password", Message: "incorrect password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Me 返回当前会话对应的用户，未登录返回 null
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to clear session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteAccount 删除当前账号，帖子和投票级联清除，会话一并销毁
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.userService.Delete(c.Request.Context(), user.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to delete account")
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to clear session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type forgotPasswordInput struct {
	Email string `json:"email"`
}

// ForgotPassword 生成重置 token 存入本地缓存并发送邮件链接
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var input forgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.FindByEmail(c.Request.Context(), input.Email)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to process request")
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}

	token := utils.GenerateToken()
	h.cache.Set(forgotPasswordPrefix+token, user.ID, forgotPasswordTTL)

	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:3000"
	}
	link := fmt.Sprintf("%s/change-password/%s", siteURL, token)
	h.mailService.SendPasswordResetEmail(user.Email, link)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type changePasswordInput struct {
	NewPassword string `json:"new_password"`
}

// ChangePassword 用邮件里的 token 重置密码，成功后直接登录
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	token := c.Param("token")

	var input changePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if utf8.RuneCountInString(input.NewPassword) <= 2 {
		RenderFieldErrors(c, http.StatusBadRequest, FieldError{Field: "newPassword", Message: "password is too short"})
		return
	}

	cached := h.cache.Get(forgotPasswordPrefix + token)
	if cached == nil {
		RenderFieldErrors(c, http.StatusBadRequest, FieldError{Field: "token", Message: "token has been expired"})
		return
	}
	userID, ok := cached.(uint)
	if !ok {
		RenderFieldErrors(c, http.StatusBadRequest, FieldError{Field: "token", Message: "token has been expired"})
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to change password")
		return
	}
	if user == nil {
		RenderFieldErrors(c, http.StatusBadRequest, FieldError{Field: "token", Message: "that user doesn't exist"})
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, input.NewPassword); err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to change password")
		return
	}

	// token 一次性使用
	h.cache.Delete(forgotPasswordPrefix + token)

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
