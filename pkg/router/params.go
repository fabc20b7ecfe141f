package router

import (
	"context"
	"net"
	"net/http"
)

type paramsKey struct{}

// Params maps the ":name" placeholders of a route to the path segments they
// matched.
type Params map[string]string

// Get returns the value bound to key, or "".
func (p Params) Get(key string) string {
	return p[key]
}

// WithParams attaches matched path parameters to ctx.
func WithParams(ctx context.Context, params Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// ParamsFromContext returns the path parameters stored by WithParams.
func ParamsFromContext(ctx context.Context) (Params, bool) {
	params, ok := ctx.Value(paramsKey{}).(Params)
	return params, ok
}

// Param returns the path parameter key of the request, or "".
func Param(r *http.Request, key string) string {
	params, _ := ParamsFromContext(r.Context())
	return params.Get(key)
}

// ClientIP returns the host part of the request's remote address.
// X-Forwarded-For and X-Real-IP are ignored; any client can set them.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
