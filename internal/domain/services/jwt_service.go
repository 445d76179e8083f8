package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"visiting-service/internal/domain/models"
	"visiting-service/internal/infrastructure/config"
	"visiting-service/pkg/utils"
)

// 登录角色
const (
	RoleAdmin      = "admin"
	RoleGateKeeper = "gate_keeper"
	RoleResident   = "resident"
)

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(userID uint, role string) (string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	Login(username, password string) (*LoginResult, error)
}

// LoginResult 表示登录结果
type LoginResult struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// JWTService 提供JWT相关服务
type JWTService struct {
	secretKey string
	issuer    string
	DB        *gorm.DB
}

// JWTClaims 定义JWT令牌的声明结构
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config, db *gorm.DB) InterfaceJWTService {
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "visiting-service",
		DB:        db,
	}
}

// 1 GenerateToken 生成JWT令牌
func (s *JWTService) GenerateToken(userID uint, role string) (string, error) {
	// 令牌有效期为24小时
	expirationTime := time.Now().Add(24 * time.Hour)

	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// 2 ValidateToken 验证JWT令牌
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名方法: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// 3 Login 依次尝试管理员、门卫（按用户名）和住户（按手机号）三类账号
func (s *JWTService) Login(username, password string) (*LoginResult, error) {
	// 管理员
	var admin models.Admin
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err == nil {
		if !utils.CheckPasswordHash(password, admin.Password) {
			return nil, errors.New("用户密码错误")
		}
		token, err := s.GenerateToken(admin.ID, RoleAdmin)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Token: token, UserID: admin.ID, Role: RoleAdmin, Username: admin.Username}, nil
	}

	// 门卫
	var gateKeeper models.GateKeeper
	if err := s.DB.Where("username = ?", username).First(&gateKeeper).Error; err == nil {
		if !utils.CheckPasswordHash(password, gateKeeper.Password) {
			return nil, errors.New("用户密码错误")
		}
		token, err := s.GenerateToken(gateKeeper.ID, RoleGateKeeper)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Token: token, UserID: gateKeeper.ID, Role: RoleGateKeeper, Username: gateKeeper.Username}, nil
	}

	// 住户按手机号登录
	var resident models.Resident
	if err := s.DB.Where("phone = ?", username).First(&resident).Error; err == nil {
		if !utils.CheckPasswordHash(password, resident.Password) {
			return nil, errors.New("用户密码错误")
		}
		token, err := s.GenerateToken(resident.ID, RoleResident)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Token: token, UserID: resident.ID, Role: RoleResident, Username: resident.Name}, nil
	}

	return nil, errors.New("用户不存在")
}
