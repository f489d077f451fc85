package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt 加盐慢哈希，明文密码禁止落库
func HashPassword(pw string) string {
	b, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b)
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
