package imagecrop

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full mount path for the aspect ratio route under basePath.
func MountPath(basePath string, fns ...HandlerOptionFn) string {
	opts := NewHandlerOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes registers the aspect ratio handler under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, ratios AspectRatios, fns ...HandlerOptionFn) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("imagecrop: missing mux")
	}
	opts := NewHandlerOptions(fns...)
	pattern := mountPath(basePath, opts.RoutePath)
	mux.Handle(pattern, NewHandler(ratios, fns...))
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
