package imagecrop

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// HTTPError is an error that carries its own HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with the status a guard wants returned.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// GuardFunc rejects a request by returning an error, ideally an HTTPError.
type GuardFunc func(r *http.Request) error

// RatioSource returns the aspect ratios to serve for a request, letting
// callers localise labels per request.
type RatioSource func(r *http.Request) AspectRatios

// HandlerOptions configures the aspect ratio endpoint.
type HandlerOptions struct {
	RoutePath string
	KeyParam  string
	Guard     GuardFunc
	Source    RatioSource
}

// HandlerOptionFn mutates HandlerOptions.
type HandlerOptionFn func(*HandlerOptions)

const (
	defaultRoutePath = "/api/image-crop/aspect-ratios"
	defaultKeyParam  = "key"
)

// DefaultHandlerOptions returns the default route path and key parameter.
func DefaultHandlerOptions() HandlerOptions {
	return HandlerOptions{
		RoutePath: defaultRoutePath,
		KeyParam:  defaultKeyParam,
	}
}

// NewHandlerOptions applies fns over DefaultHandlerOptions.
func NewHandlerOptions(fns ...HandlerOptionFn) HandlerOptions {
	opts := DefaultHandlerOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if strings.TrimSpace(opts.RoutePath) == "" {
		opts.RoutePath = defaultRoutePath
	}
	if strings.TrimSpace(opts.KeyParam) == "" {
		opts.KeyParam = defaultKeyParam
	}
	return opts
}

// WithRoutePath overrides the path mounted under the base path.
func WithRoutePath(path string) HandlerOptionFn {
	return func(o *HandlerOptions) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

// WithKeyParam sets the query parameter used to filter ratios by key.
func WithKeyParam(name string) HandlerOptionFn {
	return func(o *HandlerOptions) {
		if o == nil {
			return
		}
		o.KeyParam = name
	}
}

// WithGuard runs guard before serving each request.
func WithGuard(guard GuardFunc) HandlerOptionFn {
	return func(o *HandlerOptions) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithRatioSource resolves ratios per request instead of serving a fixed list.
func WithRatioSource(source RatioSource) HandlerOptionFn {
	return func(o *HandlerOptions) {
		if o == nil {
			return
		}
		o.Source = source
	}
}

type ratiosResponse struct {
	Data AspectRatios `json:"data"`
}

// NewHandler serves ratios as JSON for the cropper runtime. GET and HEAD are
// accepted; ?key=<k> (repeatable) narrows the list while keeping order.
func NewHandler(ratios AspectRatios, fns ...HandlerOptionFn) http.Handler {
	opts := NewHandlerOptions(fns...)
	fixed := ratios.Clone()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		current := fixed
		if opts.Source != nil {
			current = opts.Source(r)
		}
		current = filterRatios(current, r.URL.Query()[opts.KeyParam])
		if current == nil {
			current = AspectRatios{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(ratiosResponse{Data: current})
	})
}

func filterRatios(ratios AspectRatios, keys []string) AspectRatios {
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			wanted[trimmed] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return ratios
	}
	out := make(AspectRatios, 0, len(wanted))
	for _, entry := range ratios {
		if _, ok := wanted[entry.Key]; ok {
			out = append(out, entry)
		}
	}
	return out
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
