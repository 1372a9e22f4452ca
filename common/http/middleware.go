package http

import (
	"strings"
	"time"

	"sanma/common/config"
	"sanma/common/jwts"
	"sanma/common/log"
)

// CorsMiddleware 跨域
func CorsMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.SetHeader("Access-Control-Allow-Origin", "*")
			c.SetHeader("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			c.SetHeader("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.SetHeader("Access-Control-Allow-Credentials", "true")
		}
		if c.Method() == "OPTIONS" {
			c.AbortWithStatus(204)
			return nil
		}
		return nil
	}
}

// LoggerMiddleware 请求日志
func LoggerMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()
		defer func() {
			log.Debug("HTTP %s %s from %s in %v", method, path, c.ClientIP(), time.Since(start))
		}()
		c.ginCtx.Next()
		return nil
	}
}

// RecoveryMiddleware panic 恢复
func RecoveryMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		defer func() {
			if err := recover(); err != nil {
				log.Error("handler panic: %v", err)
				c.InternalServerError("")
			}
		}()
		c.ginCtx.Next()
		return nil
	}
}

// AuthMiddleware Bearer 令牌鉴权，userID/role 注入上下文
func AuthMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		token := c.GetHeader("Authorization")
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimPrefix(token, "Bearer ")
		}
		if token == "" {
			c.Unauthorized("missing authorization token")
			c.Abort()
			return nil
		}

		userID, role, err := jwts.ParseToken(token, config.Conf.JwtConf.Secret)
		if err != nil {
			c.Unauthorized("invalid token")
			c.Abort()
			return nil
		}
		if role == jwts.RoleBanned {
			c.Forbidden("USER_BANNED")
			c.Abort()
			return nil
		}

		c.Set("userID", userID)
		c.Set("role", role)
		return nil
	}
}

// AdminMiddleware 管理接口需要 admin 角色
func AdminMiddleware() MiddlewareFunc {
	return func(c *Context) error {
		if c.GetString("role") != jwts.RoleAdmin {
			c.Forbidden("")
			c.Abort()
		}
		return nil
	}
}
