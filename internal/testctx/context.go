// Package testctx bundles a per-test scratch directory with a tracked
// goroutine group, so a test can spawn background work and a temp-file
// tree without hand-rolling cleanup.
package testctx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// Context bundles a cancelable context.Context, a tracked goroutine group,
// and a lazily-created temp directory, all torn down by one Cleanup call.
type Context struct {
	t   testing.TB
	ctx context.Context

	cancel context.CancelFunc
	group  *errgroup.Group

	dir string
}

// New returns a Context with no deadline beyond the test's own lifetime.
func New(t testing.TB) *Context {
	return newContext(t, context.Background())
}

// NewWithTimeout returns a Context whose context is canceled once d has
// elapsed. Cleanup still waits for every tracked goroutine without a bound.
func NewWithTimeout(t testing.TB, d time.Duration) *Context {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	c := newContext(t, ctx)
	c.cancel = cancel
	return c
}

func newContext(t testing.TB, parent context.Context) *Context {
	group, gctx := errgroup.WithContext(parent)
	return &Context{t: t, ctx: gctx, group: group}
}

// Context returns the context background goroutines should observe for
// cancellation.
func (c *Context) Context() context.Context { return c.ctx }

// Go tracks fn in the group; Cleanup/Wait reports its error, if any.
func (c *Context) Go(fn func() error) {
	c.group.Go(fn)
}

// Dir returns (creating if necessary) a directory under the test's scratch
// root, joined from subs.
func (c *Context) Dir(subs ...string) string {
	if c.dir == "" {
		c.dir = c.t.TempDir()
	}
	full := filepath.Join(append([]string{c.dir}, subs...)...)
	if err := os.MkdirAll(full, 0o755); err != nil {
		c.t.Fatal(err)
	}
	return full
}

// File returns a path under the test's scratch root, ensuring its parent
// directory exists. It does not create the file itself.
func (c *Context) File(subs ...string) string {
	if len(subs) == 0 {
		c.t.Fatal("testctx: File requires at least one path component")
	}
	dir := c.Dir(subs[:len(subs)-1]...)
	return filepath.Join(dir, subs[len(subs)-1])
}

// Wait blocks until every tracked goroutine has returned, reporting the
// first error (if any) to the test.
func (c *Context) Wait() {
	if err := c.group.Wait(); err != nil {
		c.t.Fatal(err)
	}
}

// Cleanup waits for every tracked goroutine, then releases any deadline.
// It should be deferred immediately after New/NewWithTimeout.
func (c *Context) Cleanup() {
	c.Wait()
	if c.cancel != nil {
		c.cancel()
	}
}
