// Package store keeps encoded documents in memory between pipeline steps and
// writes finished ones to disk.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nvlled/screencage/gifenc"
	"github.com/rs/zerolog"
)

var (
	ErrDiscardFailed = errors.New("store: discard failed")
	ErrUnknownHandle = errors.New("store: unknown document handle")
)

// Cache holds encoded documents under random handles until they are
// discarded.
type Cache struct {
	mu    sync.Mutex
	docs  map[string]gifenc.Document
	bytes int

	Logger zerolog.Logger
}

func NewCache(logger zerolog.Logger) *Cache {
	return &Cache{docs: map[string]gifenc.Document{}, Logger: logger}
}

func (c *Cache) Store(doc gifenc.Document) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.docs == nil {
		c.docs = map[string]gifenc.Document{}
	}

	handle := uuid.NewString()
	c.docs[handle] = doc
	c.bytes += doc.ByteSize
	c.Logger.Debug().Str("handle", handle).Int("bytes", doc.ByteSize).Int("live", len(c.docs)).Msg("cached document")
	return handle, nil
}

func (c *Cache) Get(handle string) (gifenc.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[handle]
	return doc, ok
}

func (c *Cache) Discard(handle string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[handle]
	if !ok {
		return fmt.Errorf("%w: %w %q", ErrDiscardFailed, ErrUnknownHandle, handle)
	}
	delete(c.docs, handle)
	c.bytes -= doc.ByteSize
	c.Logger.Debug().Str("handle", handle).Int("live", len(c.docs)).Msg("discarded document")
	return nil
}

// Len returns the number of live documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Bytes returns the total size of live documents.
func (c *Cache) Bytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}
