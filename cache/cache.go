// Package cache holds large objects that should be built once per process
// and shared, such as the zobrist keys and search memo tables for a given
// board size. Objects are keyed by name and created lazily by a loader.
package cache

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tictacterm/config"
)

type cache struct {
	sync.Mutex
	objects map[string]any
}

// LoadFunc builds the object for key the first time it is requested.
type LoadFunc func(cfg *config.Config, key string) (any, error)

// GlobalObjectCache is shared by every solver in the process.
var GlobalObjectCache *cache

func (c *cache) get(cfg *config.Config, key string, loadFunc LoadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading into cache")
	obj, err := loadFunc(cfg, key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

func CreateGlobalObjectCache() {
	GlobalObjectCache = &cache{objects: make(map[string]any)}
}

var createOnce sync.Once

// Load returns the cached object for name, building it with loadFunc if needed.
func Load(cfg *config.Config, name string, loadFunc LoadFunc) (any, error) {
	createOnce.Do(func() {
		if GlobalObjectCache == nil {
			CreateGlobalObjectCache()
		}
	})
	return GlobalObjectCache.get(cfg, name, loadFunc)
}

// LoadTyped is Load with a type assertion on the result.
func LoadTyped[T any](cfg *config.Config, name string, loadFunc LoadFunc) (T, error) {
	var zero T
	obj, err := Load(cfg, name, loadFunc)
	if err != nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("cache object %q has type %T, not %T", name, obj, zero)
	}
	return t, nil
}

// Evict drops an object so the next Load rebuilds it.
func Evict(name string) {
	if GlobalObjectCache == nil {
		return
	}
	GlobalObjectCache.Lock()
	defer GlobalObjectCache.Unlock()
	delete(GlobalObjectCache.objects, name)
}
