package utils

import (
	"context"

	"github.com/mmdatafocus/drcm_backend/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

var (
	ContextKeyToken         = appctx.ContextKeyToken
	ContextKeyTokenId       = appctx.ContextKeyTokenId
	ContextKeyDepartment    = appctx.ContextKeyDepartment
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetTokenIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyTokenId)
}

func GetDepartmentFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyDepartment)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetTokenIdInContext(ctx context.Context, tokenId string) context.Context {
	return appctx.Set(ctx, ContextKeyTokenId, tokenId)
}

func SetDepartmentInContext(ctx context.Context, department string) context.Context {
	return appctx.Set(ctx, ContextKeyDepartment, department)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
