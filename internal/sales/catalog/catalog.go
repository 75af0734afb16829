// Package catalog serves the product list used to populate sale rows.
package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/crudio/crudio/internal/platform/cache"
	"github.com/crudio/crudio/internal/sales/customers"
)

// Source loads products from the API.
type Source interface {
	ListProducts(ctx context.Context) ([]customers.Product, error)
}

// Catalog de-duplicates concurrent product loads and caches the result.
type Catalog struct {
	source Source
	cache  *cache.JSON
	group  singleflight.Group
}

// New builds a Catalog. cache may be nil.
func New(source Source, c *cache.JSON) *Catalog {
	return &Catalog{source: source, cache: c}
}

// Products returns the catalog, loading it once across concurrent callers.
func (c *Catalog) Products(ctx context.Context) ([]customers.Product, error) {
	key := c.cache.Key("products")
	val, err, _ := c.do(ctx, key, func(ctx context.Context) (any, error) {
		var products []customers.Product
		err := c.cache.Fetch(ctx, key, &products, func(ctx context.Context) (any, error) {
			return c.source.ListProducts(ctx)
		})
		return products, err
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: products: %w", err)
	}
	products, _ := val.([]customers.Product)
	return products, nil
}

func (c *Catalog) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	resultChan := c.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
