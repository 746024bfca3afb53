package tasktree

import (
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/mensylisir/xmrecipes/cache"
)

// Context is the shared, mutable, string-keyed state of one task tree
// run. An earlier sibling publishes facts (e.g. "the external tool is
// installed") that a later sibling's predicates read. Writes from
// concurrent siblings must target disjoint keys; that is caller
// discipline, the store itself is race-free.
type Context struct {
	runID string
	store *cache.Cache[string, interface{}]
}

// NewContext creates an empty run context with a fresh run ID.
func NewContext() *Context {
	return &Context{
		runID: uuid.NewString(),
		store: cache.NewCache[string, interface{}](),
	}
}

// RunID identifies this run in logs and diagnostics.
func (c *Context) RunID() string {
	return c.runID
}

// Set publishes a value under key.
func (c *Context) Set(key string, value interface{}) {
	c.store.Set(key, value)
}

// Get returns the raw value for key.
func (c *Context) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

// GetOrSet returns the value for key, publishing fallback first when the
// key is absent.
func (c *Context) GetOrSet(key string, fallback interface{}) interface{} {
	v, _ := c.store.GetOrSet(key, fallback)
	return v
}

// GetString returns the value for key cast to string.
func (c *Context) GetString(key string) (string, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return "", false
	}
	return cast.ToString(v), true
}

// GetBool returns the value for key cast to bool. Missing keys are false.
func (c *Context) GetBool(key string) bool {
	v, _ := c.store.Get(key)
	return cast.ToBool(v)
}

// GetInt returns the value for key cast to int.
func (c *Context) GetInt(key string) (int, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return 0, false
	}
	return cast.ToInt(v), true
}

// Has reports whether key has been published.
func (c *Context) Has(key string) bool {
	_, ok := c.store.Get(key)
	return ok
}

// Delete removes key.
func (c *Context) Delete(key string) {
	c.store.Delete(key)
}

// Snapshot returns a copy of the current contents, e.g. for template
// rendering. Later writes are not reflected in the copy.
func (c *Context) Snapshot() map[string]interface{} {
	m := make(map[string]interface{})
	c.store.Range(func(key string, value interface{}) bool {
		m[key] = value
		return true
	})
	return m
}
