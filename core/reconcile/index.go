package reconcile

import (
	"container/list"
	"encoding/json"
	"fmt"

	"github.com/carboneio/sclone/core/storage"
)

// Index is an insertion-ordered map from join key to entry. Setting an
// existing key replaces the entry in place and keeps its position.
type Index struct {
	order *list.List
	items map[string]*list.Element
}

type indexItem struct {
	key   string
	entry *storage.FileEntry
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{order: list.New(), items: make(map[string]*list.Element)}
}

// IndexOf builds an index keyed by FileEntry.Key, in listing order.
func IndexOf(entries []storage.FileEntry) *Index {
	idx := NewIndex()
	for i := range entries {
		e := entries[i]
		idx.Set(e.Key, &e)
	}
	return idx
}

func (x *Index) Get(key string) (*storage.FileEntry, bool) {
	el, ok := x.items[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*indexItem).entry, true
}

func (x *Index) Has(key string) bool {
	_, ok := x.items[key]
	return ok
}

func (x *Index) Set(key string, entry *storage.FileEntry) {
	if el, ok := x.items[key]; ok {
		el.Value.(*indexItem).entry = entry
		return
	}
	x.items[key] = x.order.PushBack(&indexItem{key: key, entry: entry})
}

// Delete removes key and reports whether it was present.
func (x *Index) Delete(key string) bool {
	el, ok := x.items[key]
	if !ok {
		return false
	}
	x.order.Remove(el)
	delete(x.items, key)
	return true
}

func (x *Index) Len() int {
	return len(x.items)
}

// Keys returns a copy of the keys in insertion order. Mutating the index
// while ranging over the result is safe.
func (x *Index) Keys() []string {
	keys := make([]string, 0, len(x.items))
	for el := x.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*indexItem).key)
	}
	return keys
}

// Range calls fn for every entry in order until fn returns false.
func (x *Index) Range(fn func(key string, entry *storage.FileEntry) bool) {
	for el := x.order.Front(); el != nil; el = el.Next() {
		it := el.Value.(*indexItem)
		if !fn(it.key, it.entry) {
			return
		}
	}
}

// Clone copies the index. Entries are copied too, so the clone can be
// mutated without touching the original.
func (x *Index) Clone() *Index {
	c := NewIndex()
	x.Range(func(key string, entry *storage.FileEntry) bool {
		c.Set(key, entry.Clone())
		return true
	})
	return c
}

// MarshalJSON encodes the index as an array of [key, entry] pairs.
func (x *Index) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, 0, x.Len())
	x.Range(func(key string, entry *storage.FileEntry) bool {
		pairs = append(pairs, [2]any{key, entry})
		return true
	})
	return json.Marshal(pairs)
}

func (x *Index) UnmarshalJSON(data []byte) error {
	var pairs []json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	if x.items == nil {
		*x = *NewIndex()
	}
	for i, raw := range pairs {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			return fmt.Errorf("cache pair %d: %w", i, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("cache pair %d: expected [key, entry], got %d elements", i, len(pair))
		}
		var key string
		if err := json.Unmarshal(pair[0], &key); err != nil {
			return fmt.Errorf("cache pair %d key: %w", i, err)
		}
		entry := &storage.FileEntry{}
		if err := json.Unmarshal(pair[1], entry); err != nil {
			return fmt.Errorf("cache pair %d entry: %w", i, err)
		}
		x.Set(key, entry)
	}
	return nil
}
