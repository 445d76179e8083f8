package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost 统一的哈希成本；模型钩子按哈希后长度恒为60判断是否已处理，
// 调整成本不影响该判断。
const bcryptCost = bcrypt.DefaultCost

// HashPassword 对明文密码做 bcrypt 哈希
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash 校验明文密码与已存哈希是否匹配
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
