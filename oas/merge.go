package oas

import "strings"

// Methods lists the HTTP methods a path item can hold, in output order.
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// slot returns the operation field for a lower-case method, or nil when the
// method cannot be documented.
func (item *PathItem) slot(method string) **Operation {
	switch method {
	case "get":
		return &item.Get
	case "put":
		return &item.Put
	case "post":
		return &item.Post
	case "delete":
		return &item.Delete
	case "options":
		return &item.Options
	case "head":
		return &item.Head
	case "patch":
		return &item.Patch
	case "trace":
		return &item.Trace
	}
	return nil
}

// Operation returns the operation for method, or nil.
func (item *PathItem) Operation(method string) *Operation {
	if item == nil {
		return nil
	}
	if op := item.slot(strings.ToLower(method)); op != nil {
		return *op
	}
	return nil
}

// SetOperation stores op under method. It reports false for a method a
// path item cannot hold.
func (item *PathItem) SetOperation(method string, op *Operation) bool {
	slot := item.slot(strings.ToLower(method))
	if slot == nil {
		return false
	}
	*slot = op
	return true
}

// Operations returns the documented operations keyed by lower-case method.
func (item *PathItem) Operations() map[string]*Operation {
	out := map[string]*Operation{}
	if item == nil {
		return out
	}
	for _, m := range Methods {
		if op := *item.slot(m); op != nil {
			out[m] = op
		}
	}
	return out
}

// Set stores op under uri and method, replacing any previous operation for
// that pair. The method is case-insensitive. Set reports false, storing
// nothing, for a method a path item cannot hold.
func (p Paths) Set(uri, method string, op *Operation) bool {
	if (&PathItem{}).slot(strings.ToLower(method)) == nil {
		return false
	}
	item, ok := p[uri]
	if !ok {
		item = &PathItem{}
		p[uri] = item
	}
	return item.SetOperation(method, op)
}

// Get returns the operation stored under uri and method.
func (p Paths) Get(uri, method string) (*Operation, bool) {
	op := p[uri].Operation(method)
	return op, op != nil
}

// Merge folds src into p keyed by URI then method. Operations from src replace
// those with the same key, so merging the same fragment twice equals merging
// it once. Path-level fields set in src replace those of p.
func (p Paths) Merge(src Paths) {
	for uri, item := range src {
		if item == nil {
			continue
		}
		dst, ok := p[uri]
		if !ok {
			dst = &PathItem{}
			p[uri] = dst
		}
		if item.Summary != "" {
			dst.Summary = item.Summary
		}
		if item.Description != "" {
			dst.Description = item.Description
		}
		if len(item.Servers) > 0 {
			dst.Servers = item.Servers
		}
		if len(item.Parameters) > 0 {
			dst.Parameters = item.Parameters
		}
		for method, op := range item.Operations() {
			dst.SetOperation(method, op)
		}
	}
}

// Catalog is the ordered tag list, deduplicated by name. The first
// registration of a name wins.
type Catalog struct {
	tags  []Tag
	index map[string]int
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog { return &Catalog{index: map[string]int{}} }

// Add registers t unless a tag with the same name exists. It reports whether t was added.
func (c *Catalog) Add(t Tag) bool {
	if c.index == nil {
		c.index = map[string]int{}
	}
	if _, ok := c.index[t.Name]; ok {
		return false
	}
	c.index[t.Name] = len(c.tags)
	c.tags = append(c.tags, t)
	return true
}

// Merge adds every tag of other in order.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	for _, t := range other.tags {
		c.Add(t)
	}
}

// Lookup returns the tag registered under name.
func (c *Catalog) Lookup(name string) (Tag, bool) {
	i, ok := c.index[name]
	if !ok {
		return Tag{}, false
	}
	return c.tags[i], true
}

// Tags returns a copy of the catalog in registration order.
func (c *Catalog) Tags() []Tag {
	if c == nil || len(c.tags) == 0 {
		return nil
	}
	return append([]Tag(nil), c.tags...)
}

// Len returns the number of tags.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tags)
}
