package pagination

import (
	"context"
	"fmt"
	"time"
)

// Controller reveals a fixed list in pages of PageSize, the way a storefront
// "load more" button does. DisplayedCount only grows until Reset or SetItems.
// A Controller is not safe for concurrent use; scope one to a request or view.
type Controller[T any] struct {
	items     []T
	pageSize  int
	displayed int
}

// NewController builds a controller over items. pageSize <= 0 reveals everything at once.
func NewController[T any](items []T, pageSize int) *Controller[T] {
	c := &Controller[T]{pageSize: pageSize}
	c.SetItems(items)
	return c
}

// SetItems replaces the list (new sort key or collection) and resets the cursor.
func (c *Controller[T]) SetItems(items []T) {
	c.items = items
	c.Reset()
}

// Reset hides every item again.
func (c *Controller[T]) Reset() {
	c.displayed = 0
}

// Restore positions the controller at a previously issued cursor, clamped to
// the list length.
func (c *Controller[T]) Restore(displayed int) {
	switch {
	case displayed < 0:
		c.displayed = 0
	case displayed > len(c.items):
		c.displayed = len(c.items)
	default:
		c.displayed = displayed
	}
}

// RevealNext exposes the next page and returns only the newly revealed slice.
// When the list is already exhausted it returns nil and true without changing state.
func (c *Controller[T]) RevealNext() ([]T, bool) {
	if c.IsExhausted() {
		return nil, true
	}
	start := c.displayed
	end := c.Total()
	if c.pageSize > 0 && start+c.pageSize < end {
		end = start + c.pageSize
	}
	c.displayed = end
	return c.items[start:end:end], c.IsExhausted()
}

// RevealNextAfter waits delay before revealing, mimicking a loading state.
// Cancelling ctx (the view went away) abandons the reveal and leaves state untouched.
func (c *Controller[T]) RevealNextAfter(ctx context.Context, delay time.Duration) ([]T, bool, error) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, c.IsExhausted(), ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, c.IsExhausted(), err
	}
	page, exhausted := c.RevealNext()
	return page, exhausted, nil
}

// IsExhausted reports whether every item has been revealed.
func (c *Controller[T]) IsExhausted() bool {
	return c.displayed >= len(c.items)
}

// DisplayedCount is the number of items revealed so far.
func (c *Controller[T]) DisplayedCount() int {
	return c.displayed
}

// Total is the number of items in the list.
func (c *Controller[T]) Total() int {
	return len(c.items)
}

// PageSize is the reveal batch size.
func (c *Controller[T]) PageSize() int {
	return c.pageSize
}

// Visible returns every item revealed so far.
func (c *Controller[T]) Visible() []T {
	return c.items[:c.displayed:c.displayed]
}

// ResultsLabel renders the storefront's result counter.
func (c *Controller[T]) ResultsLabel() string {
	return fmt.Sprintf("Showing %d of %d products", c.displayed, len(c.items))
}
