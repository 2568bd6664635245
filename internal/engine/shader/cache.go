package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
	"github.com/Faultbox/opengraphics/internal/logger"
)

type cacheKey struct {
	vertex, fragment string
}

func (k cacheKey) String() string {
	return k.vertex + "+" + k.fragment
}

type cacheEntry struct {
	program *Program
	refs    int
}

// Cache hands out one shared Program per (vertex path, fragment path) pair
// and deletes it when the last holder releases it.
type Cache struct {
	dev  gpu.Device
	fsys fs.FS

	// Strict makes Acquire fail on compile or link diagnostics instead of
	// logging them and handing out the program anyway.
	Strict bool

	// OnDelete runs when the last reference to a program is released,
	// before the program is deleted.
	OnDelete func(*Program)

	entries map[cacheKey]*cacheEntry
}

// NewCache creates a cache reading stage sources from fsys.
func NewCache(dev gpu.Device, fsys fs.FS) *Cache {
	return &Cache{
		dev:     dev,
		fsys:    fsys,
		entries: make(map[cacheKey]*cacheEntry),
	}
}

// Acquire returns the program for the stage pair, building it on first use.
// Every successful Acquire must be balanced by one Program.Release.
func (c *Cache) Acquire(vertexPath, fragmentPath string) (*Program, error) {
	key := cacheKey{vertex: vertexPath, fragment: fragmentPath}
	if e, ok := c.entries[key]; ok {
		e.refs++
		return e.program, nil
	}

	vertexSrc, err := fs.ReadFile(c.fsys, vertexPath)
	if err != nil {
		return nil, fmt.Errorf("reading vertex stage: %w", err)
	}
	fragmentSrc, err := fs.ReadFile(c.fsys, fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("reading fragment stage: %w", err)
	}

	p, err := build(c.dev, key.String(), string(vertexSrc), string(fragmentSrc))
	if err != nil {
		var compileErr *CompileError
		if !errors.As(err, &compileErr) || c.Strict {
			p.Dispose()
			return nil, err
		}
		// Diagnostics were already logged; keep going with what linked.
	}

	p.cache = c
	p.key = key
	c.entries[key] = &cacheEntry{program: p, refs: 1}
	return p, nil
}

func (c *Cache) release(p *Program) {
	e, ok := c.entries[p.key]
	if !ok || e.program != p {
		logger.Named("shader").Warn("release of program not held by cache",
			zap.String("program", p.name))
		p.Dispose()
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	delete(c.entries, p.key)
	if c.OnDelete != nil {
		c.OnDelete(p)
	}
	p.Dispose()
}

// Refs returns the number of outstanding references for a stage pair.
func (c *Cache) Refs(vertexPath, fragmentPath string) int {
	if e, ok := c.entries[cacheKey{vertex: vertexPath, fragment: fragmentPath}]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of live programs.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Keys lists the live stage pairs as "vertex+fragment", sorted.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}

// Close deletes every program regardless of outstanding references.
func (c *Cache) Close() {
	for key, e := range c.entries {
		if e.refs > 0 {
			logger.Named("shader").Debug("closing program with live references",
				zap.String("program", key.String()),
				zap.Int("refs", e.refs))
		}
		e.program.Dispose()
	}
	c.entries = make(map[cacheKey]*cacheEntry)
}
