// Package orbital holds the input state of an orbital evaluation (electrons,
// points, nuclei, AO and MO bases) and lazily computes the derived AO and MO
// value/gradient/Laplacian arrays from it.
//
// A Context is driven by one goroutine at a time. Callers that share one
// across goroutines must serialise every call with their own mutex.
package orbital

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/samcharles93/orbital/internal/logger"
	"github.com/samcharles93/orbital/pkg/kernel"
	"github.com/samcharles93/orbital/pkg/memory"
)

// Context is the root of all orbital state and owns every buffer allocated
// on its behalf.
type Context struct {
	id   uuid.UUID
	log  logger.Logger
	mem  *memory.Manager
	eval Evaluator

	destroyed bool

	// date is the touch counter; versions[g] is the date of g's last mutation.
	date     uint64
	versions [numGroups]uint64

	electron electronGroup
	point    pointGroup
	nucleus  nucleusGroup
	ao       aoBasisGroup
	mo       moBasisGroup

	cache [numKinds]entry
}

type options struct {
	log     logger.Logger
	eval    Evaluator
	workers int
}

// Option configures a Context.
type Option func(*options)

// WithLogger routes the context's debug records to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = logger.FromSlog(l)
		}
	}
}

// WithEvaluator replaces the built-in numeric kernels.
func WithEvaluator(e Evaluator) Option {
	return func(o *options) { o.eval = e }
}

// WithWorkers bounds the goroutines used by the built-in AO kernel.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// New creates a Context. dev may be nil for a host-only context; device
// buffers and device-located requests then fail with ErrResource.
func New(dev memory.Device, opts ...Option) *Context {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Discard()
	}
	if o.eval == nil {
		o.eval = KernelEvaluator{Options: kernel.Options{Workers: o.workers}}
	}

	id := uuid.New()
	devName := "none"
	if dev != nil {
		devName = dev.Name()
	}
	c := &Context{
		id:   id,
		log:  o.log.With("context_id", id.String()),
		mem:  memory.NewManager(id, dev),
		eval: o.eval,
	}
	for k := range c.cache {
		c.cache[k].kind = Kind(k)
	}
	c.log.Debug("context created", "device", devName)
	return c
}

// ID returns the context's unique identifier.
func (c *Context) ID() uuid.UUID { return c.id }

// HasDevice reports whether an accelerator is attached.
func (c *Context) HasDevice() bool { return c.mem.HasDevice() }

// Date returns the touch counter: the number of accepted mutations so far.
func (c *Context) Date() uint64 { return c.date }

// Version returns the touch counter value at g's last mutation, 0 if never.
func (c *Context) Version(g Group) uint64 {
	if g >= numGroups {
		return 0
	}
	return c.versions[g]
}

func (c *Context) usable(op string) error {
	if c.destroyed {
		return notReady(op, "context destroyed")
	}
	return nil
}

// stamp records an accepted mutation of g.
func (c *Context) stamp(g Group) {
	c.date++
	c.versions[g] = c.date
}

// Touch signals a change made outside the setters. Every provided group is
// treated as modified, so every derived array is recomputed on its next
// request. With nothing provided it does nothing.
func (c *Context) Touch() error {
	const op = "touch"
	if err := c.usable(op); err != nil {
		return err
	}
	var touched []Group
	for _, g := range Groups() {
		if c.Provided(g) {
			touched = append(touched, g)
		}
	}
	if len(touched) == 0 {
		return nil
	}
	c.date++
	for _, g := range touched {
		c.versions[g] = c.date
	}
	c.log.Debug("touched", "date", c.date, "groups", len(touched))
	return nil
}

// Destroy releases every buffer the context owns. A destroyed context rejects
// every further call, and a second Destroy fails with ErrResource.
func (c *Context) Destroy() error {
	const op = "destroy"
	if c.destroyed {
		return &Error{Kind: ErrResource, Op: op, Msg: "context already destroyed"}
	}
	c.destroyed = true
	for k := range c.cache {
		c.cache[k] = entry{kind: Kind(k)}
	}
	n, err := c.mem.ReleaseAll()
	c.log.Debug("context destroyed", "buffers_released", n)
	if err != nil {
		return memErr(op, err)
	}
	return nil
}

// Live reports the number of host and device buffers currently owned.
func (c *Context) Live() (host, device int) {
	return c.mem.Live()
}

// MallocHost allocates a host buffer owned by the context.
func (c *Context) MallocHost(bytes int64) (memory.Buffer, error) {
	return c.malloc("malloc_host", memory.Host, bytes)
}

// MallocDevice allocates a device buffer owned by the context.
func (c *Context) MallocDevice(bytes int64) (memory.Buffer, error) {
	return c.malloc("malloc_device", memory.Device, bytes)
}

func (c *Context) malloc(op string, loc memory.Location, bytes int64) (memory.Buffer, error) {
	if err := c.usable(op); err != nil {
		return memory.Buffer{}, err
	}
	b, err := c.mem.Alloc(loc, bytes)
	if err != nil {
		return memory.Buffer{}, memErr(op, err)
	}
	return b, nil
}

// Free releases a buffer obtained from MallocHost or MallocDevice.
func (c *Context) Free(b memory.Buffer) error {
	const op = "free"
	if err := c.usable(op); err != nil {
		return err
	}
	if err := c.mem.Free(b); err != nil {
		return memErr(op, err)
	}
	return nil
}

// MemcpyH2D copies a host slice into a context-owned buffer.
func MemcpyH2D[T memory.Elem](c *Context, dst memory.Buffer, src []T) error {
	const op = "memcpy_h2d"
	if err := c.usable(op); err != nil {
		return err
	}
	if err := memory.Write(c.mem, dst, src); err != nil {
		return memErr(op, err)
	}
	return nil
}

// MemcpyD2H copies the start of a context-owned buffer into a host slice.
func MemcpyD2H[T memory.Elem](c *Context, dst []T, src memory.Buffer) error {
	const op = "memcpy_d2h"
	if err := c.usable(op); err != nil {
		return err
	}
	if err := memory.Read(c.mem, dst, src); err != nil {
		return memErr(op, err)
	}
	return nil
}

// fetch reads n elements of a caller buffer into a fresh host slice.
func fetch[T memory.Elem](c *Context, op string, src memory.Buffer, n int64) ([]T, error) {
	if n <= 0 {
		return nil, invalidArg(op, "element count %d", n)
	}
	out := make([]T, n)
	if err := memory.Read(c.mem, out, src); err != nil {
		return nil, memErr(op, err)
	}
	return out, nil
}

// readIntoBuffer copies a stored array into a context-owned buffer.
func readIntoBuffer[T memory.Elem](c *Context, op string, f field, src []T, dst memory.Buffer) error {
	if err := c.usable(op); err != nil {
		return err
	}
	if !f.set {
		return notReady(op, "field not set")
	}
	if err := memory.Write(c.mem, dst, src); err != nil {
		return memErr(op, err)
	}
	return nil
}

// readInto copies a stored array into dst after presence and capacity checks.
func readInto[T memory.Elem](c *Context, op string, f field, src, dst []T) error {
	if err := c.usable(op); err != nil {
		return err
	}
	if !f.set {
		return notReady(op, "field not set")
	}
	if len(dst) < len(src) {
		return invalidArg(op, "destination holds %d values, need %d", len(dst), len(src))
	}
	copy(dst, src)
	return nil
}
