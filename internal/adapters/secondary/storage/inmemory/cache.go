package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/abriesk/psychobotV1/internal/ports/cache"
)

// Cache in-memory реализация cache.Cache с TTL.
// Используется в локальной разработке, когда Redis не поднят.
type Cache struct {
	mu    sync.RWMutex
	items map[string]item
}

type item struct {
	value     string
	expiresAt time.Time // нулевое время = без срока
}

// NewCache создаёт новый in-memory кэш
func NewCache() cache.Cache {
	return &Cache{
		items: make(map[string]item),
	}
}

// Get получает значение по ключу; для отсутствующего ключа возвращает ""
func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return "", nil
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return "", nil
	}
	return it.value, nil
}

// Set устанавливает значение с TTL (ttl <= 0 — без срока)
func (c *Cache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = item{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Delete удаляет значение по ключу
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Exists проверяет существование ключа
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	v, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return v != "", nil
}

// Close очищает кэш
func (c *Cache) Close() error {
	c.mu.Lock()
	c.items = make(map[string]item)
	c.mu.Unlock()
	return nil
}
