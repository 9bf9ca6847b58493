// Package promo decorates catalog products with badges and script-driven
// discounts. Rules are a tengo script so merchandising can change them without
// a deploy.
package promo

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/spf13/afero"

	"github.com/nfrund/zina/internal/domain"
)

//go:embed default.tengo
var defaultScript []byte

const (
	// MaxDiscount caps the percentage a script may take off a list price.
	MaxDiscount = 90

	defaultTimeout = 25 * time.Millisecond
	maxAllocs      = 5000
)

// Engine runs the promotion script against products. It is safe for
// concurrent use; Reload swaps the program atomically.
type Engine struct {
	fs      afero.Fs
	path    string
	timeout time.Duration

	mu       sync.RWMutex
	compiled *tengo.Compiled

	wg sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds a single script run.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New loads the script at path from fs, or the embedded default rules when
// path is empty.
func New(fs afero.Fs, path string, opts ...Option) (*Engine, error) {
	e := &Engine{fs: fs, path: path, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload reads and compiles the script again. On failure the previously
// loaded program stays active.
func (e *Engine) Reload() error {
	src := defaultScript
	if e.path != "" {
		b, err := afero.ReadFile(e.fs, e.path)
		if err != nil {
			return fmt.Errorf("read promo script %s: %w", e.path, err)
		}
		src = b
	}

	compiled, err := compile(src)
	if err != nil {
		return fmt.Errorf("compile promo script: %w", err)
	}

	e.mu.Lock()
	e.compiled = compiled
	e.mu.Unlock()

	slog.Info("Promo rules loaded", "source", e.source())
	return nil
}

func (e *Engine) source() string {
	if e.path == "" {
		return "embedded"
	}
	return e.path
}

func compile(src []byte) (*tengo.Compiled, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap("math", "text", "times"))
	script.SetMaxAllocs(maxAllocs)

	vars := map[string]interface{}{
		"product":  map[string]interface{}{},
		"badge":    "",
		"discount": 0,
	}
	for name, v := range vars {
		if err := script.Add(name, v); err != nil {
			return nil, fmt.Errorf("failed to set variable %s: %w", name, err)
		}
	}
	return script.Compile()
}

// Apply returns decorated copies of products. A product whose script run fails
// or times out is returned unchanged.
func (e *Engine) Apply(ctx context.Context, products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		d, err := e.Decorate(ctx, p)
		if err != nil {
			slog.WarnContext(ctx, "Promo script failed", "product_id", p.ID, "error", err)
			out[i] = p
			continue
		}
		out[i] = d
	}
	return out
}

// Decorate runs the script for a single product.
func (e *Engine) Decorate(ctx context.Context, p domain.Product) (domain.Product, error) {
	e.mu.RLock()
	c := e.compiled.Clone()
	e.mu.RUnlock()

	if err := c.Set("product", productVars(p)); err != nil {
		return p, err
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := c.RunContext(runCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return p, fmt.Errorf("promo script timed out after %s", e.timeout)
		}
		return p, err
	}

	p.Badge = c.Get("badge").String()

	discount := c.Get("discount").Int()
	if discount > MaxDiscount {
		discount = MaxDiscount
	}
	if discount > 0 && p.SalePrice <= 0 && p.Price > 0 {
		p.SalePrice = math.Round(p.Price*float64(100-discount)) / 100
	}
	return p, nil
}

func productVars(p domain.Product) map[string]interface{} {
	tags := make([]interface{}, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = t
	}
	return map[string]interface{}{
		"id":         p.ID,
		"name":       p.Name,
		"brand":      p.Brand,
		"category":   p.Category,
		"price":      p.Price,
		"sale_price": p.SalePrice,
		"rating":     p.Rating,
		"in_stock":   p.InStock,
		"tags":       tags,
	}
}
