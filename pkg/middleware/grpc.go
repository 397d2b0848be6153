package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/weiawesome/wes-io-live/pkg/jwt"
)

type claimsCtxKey struct{}

// UnaryAuthInterceptor rejects calls without a valid bearer token in the
// "authorization" metadata. Methods whose full name starts with one of the
// skip prefixes are let through.
func UnaryAuthInterceptor(manager *jwt.Manager, skip ...string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		for _, prefix := range skip {
			if strings.HasPrefix(info.FullMethod, prefix) {
				return handler(ctx, req)
			}
		}

		md, _ := metadata.FromIncomingContext(ctx)
		var header string
		if vals := md.Get("authorization"); len(vals) > 0 {
			header = vals[0]
		}

		token, ok := bearerToken(header)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}

		claims, err := manager.ValidateToken(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(context.WithValue(ctx, claimsCtxKey{}, claims), req)
	}
}

// UnaryScopeInterceptor requires the scope mapped to a method's full name.
// Methods not in scopes pass through. It must be chained after
// UnaryAuthInterceptor.
func UnaryScopeInterceptor(scopes map[string]string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		scope, ok := scopes[info.FullMethod]
		if !ok {
			return handler(ctx, req)
		}

		claims, ok := ClaimsFromContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing token claims")
		}
		if !claims.HasScope(scope) {
			return nil, status.Errorf(codes.PermissionDenied, "token lacks scope %s", scope)
		}
		return handler(ctx, req)
	}
}

// ClaimsFromContext returns the claims set by UnaryAuthInterceptor.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(*jwt.Claims)
	return claims, ok
}
