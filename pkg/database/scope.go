package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// RequestScopeKey is the context key for the request-scoped database connection.
const RequestScopeKey contextKey = "requestScope"

// RequestScope pins a single pooled connection to one request so every
// cache lookup, reference lookup and the final execution share it.
type RequestScope struct {
	Conn *pgxpool.Conn
}

// Close releases the connection back to the pool.
// This MUST be called on every exit path, including early error returns.
func (s *RequestScope) Close() {
	if s.Conn == nil {
		return
	}
	s.Conn.Release()
}

// GetRequestScope retrieves the request-scoped connection from context.
// Returns nil and false if not present.
func GetRequestScope(ctx context.Context) (*RequestScope, bool) {
	scope, ok := ctx.Value(RequestScopeKey).(*RequestScope)
	return scope, ok
}

// SetRequestScope stores the request-scoped connection in context.
func SetRequestScope(ctx context.Context, scope *RequestScope) context.Context {
	return context.WithValue(ctx, RequestScopeKey, scope)
}

// WithRequestScope acquires a connection and returns a context carrying it.
// The cleanup function must be deferred by the caller.
func (db *DB) WithRequestScope(ctx context.Context) (context.Context, func(), error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	scope := &RequestScope{Conn: conn}
	return SetRequestScope(ctx, scope), scope.Close, nil
}
