package imagecrop

import (
	"context"
	"net/http"
)

// Component bundles an adapter with one resolved field declaration, for
// callers that mount a single image field and its aspect ratio endpoint.
type Component struct {
	adapter *Adapter
	name    string
	opts    Options
	routes  []HandlerOptionFn
}

// NewComponent declares the field name on adapter with fns applied.
func NewComponent(adapter *Adapter, name string, fns ...OptionFn) *Component {
	if adapter == nil {
		adapter = New(nil, nil, nil)
	}
	return &Component{
		adapter: adapter,
		name:    name,
		opts:    adapter.DeclareOptions(fns...),
	}
}

// WithRoutes sets handler options used by Handler and RegisterRoutes.
func (c *Component) WithRoutes(fns ...HandlerOptionFn) *Component {
	if c == nil {
		return nil
	}
	c.routes = append(c.routes, fns...)
	return c
}

// Adapter returns the wrapped adapter.
func (c *Component) Adapter() *Adapter {
	if c == nil {
		return nil
	}
	return c.adapter
}

// Name returns the declared field name.
func (c *Component) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Options returns a copy of the declared options.
func (c *Component) Options() Options {
	if c == nil {
		return NewOptions(nil)
	}
	return c.opts.Clone()
}

// Bind starts a request-scoped form for parent.
func (c *Component) Bind(ctx context.Context, parent Entity) (*Form, error) {
	return c.adapter.Bind(ctx, c.name, c.opts, parent)
}

// Handler returns the aspect ratio handler for the declared options.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return NewHandler(NewOptions(nil).AspectRatios)
	}
	return NewHandler(c.opts.AspectRatios, c.routes...)
}

// RegisterRoutes registers the aspect ratio handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath, NewOptions(nil).AspectRatios)
	}
	return RegisterRoutes(mux, basePath, c.opts.AspectRatios, c.routes...)
}
