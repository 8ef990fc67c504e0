package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/luvfam/familing/middleware"
)

// getIdentity returns the authenticated (user, family) pair from context.
func getIdentity(ctx *gin.Context) (userID, familyID uint, ok bool) {
	uv, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, 0, false
	}
	fv, exists := ctx.Get(middleware.ContextFamilyIDKey)
	if !exists {
		return 0, 0, false
	}
	userID, uok := uv.(uint)
	familyID, fok := fv.(uint)
	if !uok || !fok || userID == 0 || familyID == 0 {
		return 0, 0, false
	}
	return userID, familyID, true
}

func getNickname(ctx *gin.Context) string {
	if v, exists := ctx.Get(middleware.ContextNicknameKey); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
