package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luvfam/familing/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextFamilyIDKey stores the caller's family ID inside Gin context.
	ContextFamilyIDKey = "family_id"
	// ContextNicknameKey stores the nickname inside Gin context.
	ContextNicknameKey = "nickname"
)

// AuthRequired resolves the acting (user, family) pair from a bearer JWT.
// Token issuance belongs to the external identity service; this middleware
// only validates and unpacks.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "invalid token")
			ctx.Abort()
			return
		}
		if claims.FamilyID == 0 {
			utils.Error(ctx, http.StatusForbidden, 40301, "no family membership")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextFamilyIDKey, claims.FamilyID)
		ctx.Set(ContextNicknameKey, claims.Nickname)
		ctx.Next()
	}
}
