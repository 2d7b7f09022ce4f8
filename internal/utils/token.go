package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken 生成一个随机十六进制 token，用于密码重置链接
func GenerateToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand 在正常环境下不会失败
		panic(err)
	}
	return hex.EncodeToString(b)
}
