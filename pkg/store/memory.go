package store

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ Store = &MemStore{}

// MemStore keeps objects in memory. It backs the test suites and is
// handy for local experiments (`backend: mem`); nothing survives a
// restart.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data []byte
	info ObjectInfo
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string]memObject),
	}
}

func (m *MemStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	// lexicographic, like an S3 listing
	sort.Strings(keys)

	infos := make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, copyInfo(m.objects[key].info))
	}
	return infos, nil
}

func (m *MemStore) Head(_ context.Context, key string) (*ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrDoesNotExist
	}
	info := copyInfo(obj.info)
	return &info, nil
}

func (m *MemStore) Get(_ context.Context, key string) (*ObjectInfo, io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, nil, ErrDoesNotExist
	}
	info := copyInfo(obj.info)
	return &info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{
		data: data,
		info: ObjectInfo{
			Key:         key,
			Size:        int64(len(data)),
			ETag:        fmt.Sprintf("%x", md5.Sum(data)),
			Uploaded:    time.Now().UTC(),
			ContentType: contentType,
		},
	}
	return nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// SetCustom attaches custom metadata to an already stored object.
func (m *MemStore) SetCustom(key string, custom map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return ErrDoesNotExist
	}
	obj.info.Custom = custom
	m.objects[key] = obj
	return nil
}

func copyInfo(info ObjectInfo) ObjectInfo {
	if info.Custom != nil {
		custom := make(map[string]string, len(info.Custom))
		for k, v := range info.Custom {
			custom[k] = v
		}
		info.Custom = custom
	}
	return info
}
