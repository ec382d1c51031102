// Package hxsearchecho provides Echo framework integration for hxsearch
// elements.
//
// Mount the element routes onto an Echo instance or a root-level group:
//
//	e := echo.New()
//	reg := hxsearchecho.Mount(e, hxsearchecho.WithKey(key))
//	elements.Init(reg, fns)
//
// Element routes always live under /_c/, so groups passed to MountGroup
// must not add a path prefix; they contribute middleware only.
package hxsearchecho

import (
	"crypto/rand"
	"fmt"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxsearch"
	"go.uber.org/zap"
)

// Path is the route prefix element routes are served under.
const Path = "/_c/"

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	key      []byte
	registry []hxsearch.RegistryOption
}

// WithKey sets the props signing key for the registry.
// If not provided, a random key is generated (suitable for development only:
// element links do not survive a restart).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.registry = append(o.registry, hxsearch.WithRegistryLogger(logger))
	}
}

// WithMaxInstances bounds the live element instances.
func WithMaxInstances(n int) Option {
	return func(o *options) {
		o.registry = append(o.registry, hxsearch.WithMaxInstances(n))
	}
}

// Mount creates a registry and mounts its handler on an Echo instance.
//
//	e := echo.New()
//	reg := hxsearchecho.Mount(e)
//	reg.Add(gwas)
func Mount(e *echo.Echo, opts ...Option) *hxsearch.Registry {
	reg := newRegistry(opts)
	e.Any(Path+"*", echo.WrapHandler(reg.Handler()))
	return reg
}

// MountGroup creates a registry and mounts its handler on an Echo group.
// This allows elements to share middleware with the group (auth, logging, etc.).
//
//	g := e.Group("", middleware.Logger())
//	reg := hxsearchecho.MountGroup(g)
func MountGroup(g *echo.Group, opts ...Option) *hxsearch.Registry {
	reg := newRegistry(opts)
	g.Any(Path+"*", echo.WrapHandler(reg.Handler()))
	return reg
}

func newRegistry(opts []Option) *hxsearch.Registry {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxsearchecho: failed to generate random key: %v", err))
		}
	}

	return hxsearch.NewRegistry(key, o.registry...)
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxsearchecho.Render(c, page())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
