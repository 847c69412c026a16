package service

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strconv"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	pkgerrors "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/errors"
)

// ── 账号规则 ──

const (
	minPasswordLength = 8
	studentMinSuffix  = 1
	studentMaxSuffix  = 157
)

// 学生用户名：AIE230 + 编号（取值 1~157）
// 每个编号只有一种写法：01~99 两位，100~157 三位
var studentUsernamePattern = regexp.MustCompile(`^AIE230(0[1-9]|[1-9][0-9]|1[0-9]{2})$`)

var (
	ErrInvalidUsernameFormat = pkgerrors.New(pkgerrors.ErrValidation, "用户名格式无效，应为 AIE230 加 01-157 范围内的编号")
	ErrPasswordTooShort      = pkgerrors.New(pkgerrors.ErrValidation, "密码长度不能少于 8 位")
)

// ValidateStudentUsername 校验学生自助注册的用户名格式
func ValidateStudentUsername(username string) error {
	m := studentUsernamePattern.FindStringSubmatch(username)
	if m == nil {
		return ErrInvalidUsernameFormat
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < studentMinSuffix || n > studentMaxSuffix {
		return ErrInvalidUsernameFormat
	}
	return nil
}

// ValidatePassword 校验密码长度（按字符计）
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword bcrypt 哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < minPasswordLength {
		length = minPasswordLength
	}

	result := make([]byte, length)

	// 保证至少1个字母+1个数字
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}
