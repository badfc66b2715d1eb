package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/contractgen/backend/internal/model"
	"github.com/contractgen/backend/internal/service"
)

const actorKey = "actor"

// Auth 按 Bearer 令牌解析当前用户，失败一律 401
func Auth(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := users.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

// CurrentActor 取出鉴权中间件写入的用户
func CurrentActor(c *gin.Context) *model.User {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
