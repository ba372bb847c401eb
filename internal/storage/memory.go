package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"sftgate/internal/sentinel"
)

type memBlob struct {
	data []byte
	info BlobInfo
}

// Memory is an in-memory BlobStore used in tests and local runs. A single
// lock covers the check-and-insert in Put, which gives the atomicity the
// interface demands.
type Memory struct {
	mu         sync.RWMutex
	containers map[string]map[string]memBlob
	now        func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		containers: make(map[string]map[string]memBlob),
		now:        time.Now,
	}
}

func (m *Memory) EnsureContainer(ctx context.Context, container string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.containers[container]; !ok {
		m.containers[container] = make(map[string]memBlob)
	}
	return nil
}

func (m *Memory) ContainerExists(ctx context.Context, container string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.containers[container]
	return ok, nil
}

func (m *Memory) Containers(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.containers))
	for name := range m.containers {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) ListBlobs(ctx context.Context, container, prefix string) ([]BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	blobs, ok := m.containers[container]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	infos := make([]BlobInfo, 0, len(blobs))
	for name, b := range blobs {
		if strings.HasPrefix(name, prefix) {
			infos = append(infos, b.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (m *Memory) Put(ctx context.Context, container, name string, content io.Reader) (BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return BlobInfo{}, err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return BlobInfo{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	blobs, ok := m.containers[container]
	if !ok {
		return BlobInfo{}, sentinel.ErrNotFound
	}
	if _, exists := blobs[name]; exists {
		return BlobInfo{}, sentinel.ErrAlreadyUsed
	}
	info := BlobInfo{
		Name:       name,
		Size:       int64(len(data)),
		ModifiedAt: m.now().UTC(),
		Tier:       "Hot",
	}
	blobs[name] = memBlob{data: data, info: info}
	return info, nil
}

func (m *Memory) Get(ctx context.Context, container, name string) (io.ReadCloser, BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, BlobInfo{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	blobs, ok := m.containers[container]
	if !ok {
		return nil, BlobInfo{}, sentinel.ErrNotFound
	}
	b, ok := blobs[name]
	if !ok {
		return nil, BlobInfo{}, sentinel.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), b.info, nil
}

func (m *Memory) Delete(ctx context.Context, container, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	blobs, ok := m.containers[container]
	if !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := blobs[name]; !ok {
		return sentinel.ErrNotFound
	}
	delete(blobs, name)
	return nil
}

func (m *Memory) Exists(ctx context.Context, container, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	blobs, ok := m.containers[container]
	if !ok {
		return false, nil
	}
	_, ok = blobs[name]
	return ok, nil
}
