package auth

import (
	"context"
	"fmt"
)

type contextKey string

const callerContextKey contextKey = "caller"

// CallerContext описывает цеховую систему, от имени которой пришел запрос
type CallerContext struct {
	Subject  string
	SystemID string
}

func WithCaller(ctx context.Context, caller *CallerContext) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

func GetCaller(ctx context.Context) (*CallerContext, error) {
	caller, ok := ctx.Value(callerContextKey).(*CallerContext)
	if !ok || caller == nil {
		return nil, fmt.Errorf("caller not found in context")
	}
	return caller, nil
}

func GetSystemID(ctx context.Context) (string, error) {
	caller, err := GetCaller(ctx)
	if err != nil {
		return "", err
	}
	return caller.SystemID, nil
}
