package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"visiting-service/internal/domain/services"
	"visiting-service/internal/infrastructure/config"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(cfg *config.Config, db *gorm.DB) {
	jwtService = services.NewJWTService(cfg, db)
}

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// authenticateRole 按角色验证请求中的JWT令牌
func authenticateRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Authorization header is required",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 提取并验证token
		tokenString := extractToken(authHeader)
		token, err := jwtService.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid or expired token",
				"data":    nil,
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token claims",
				"data":    nil,
			})
			c.Abort()
			return
		}

		role, exists := claims["role"].(string)
		if !exists || !roleAllowed(role, allowed) {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "Insufficient permissions",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 存储claims到上下文
		c.Set("userID", claims["user_id"])
		c.Set("role", role)
		c.Set("claims", claims)
		c.Next()
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// AuthenticateAdmin 验证系统管理员权限
func AuthenticateAdmin() gin.HandlerFunc {
	return authenticateRole(services.RoleAdmin)
}

// AuthenticateGateKeeper 验证门卫权限，管理员也可以访问门卫的接口
func AuthenticateGateKeeper() gin.HandlerFunc {
	return authenticateRole(services.RoleGateKeeper, services.RoleAdmin)
}

// AuthenticateResident 验证住户权限
func AuthenticateResident() gin.HandlerFunc {
	return authenticateRole(services.RoleResident)
}

// AuthenticateAny 任意已登录角色均可访问
func AuthenticateAny() gin.HandlerFunc {
	return authenticateRole(services.RoleAdmin, services.RoleGateKeeper, services.RoleResident)
}

// GetUserID 从上下文中取出当前登录用户ID
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	// MapClaims中的数字类型是float64
	switch v := value.(type) {
	case float64:
		return uint(v), true
	case uint:
		return v, true
	case int:
		return uint(v), true
	default:
		return 0, false
	}
}
