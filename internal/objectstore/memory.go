package objectstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory keeps objects in a map.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject)}
}

func (*Memory) Name() string {
	return "memory"
}

func (m *Memory) Get(_ context.Context, key string) (data []byte, err error) {
	defer func(start time.Time) { observe("memory", "get", start, err) }(time.Now())

	if err := validateKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(obj.data), nil
}

func (m *Memory) Put(_ context.Context, key string, data []byte, contentType string) (err error) {
	defer func(start time.Time) { observe("memory", "put", start, err) }(time.Now())

	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{data: slices.Clone(data), contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) (keys []string, err error) {
	defer func(start time.Time) { observe("memory", "list", start, err) }(time.Now())

	m.mu.RLock()
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()

	slices.Sort(keys)
	return keys, nil
}

func (m *Memory) Exists(_ context.Context, key string) (ok bool, err error) {
	defer func(start time.Time) { observe("memory", "exists", start, err) }(time.Now())

	m.mu.RLock()
	_, ok = m.objects[key]
	m.mu.RUnlock()
	return ok, nil
}

// ContentType returns the content type an object was stored with.
func (m *Memory) ContentType(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.contentType, ok
}
