package colorspace

import (
	"fmt"
	"log"
	"os"

	"pixotope-settings-go/internal/types"
)

// Store is the persistence a Catalog caches parsed configs in.
type Store interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
}

// Catalog loads color spaces from an OCIO config, reusing the last parse
// while the file is unchanged.
type Catalog struct {
	path  string
	store Store
}

// NewCatalog returns a catalog for the config at path. store may be nil.
func NewCatalog(path string, store Store) *Catalog {
	return &Catalog{path: path, store: store}
}

// Path returns the config file location.
func (c *Catalog) Path() string {
	return c.path
}

// Load returns the color spaces in the config.
func (c *Catalog) Load() ([]types.ColorSpaceEntry, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, fmt.Errorf("stat ocio config: %w", err)
	}
	key := fmt.Sprintf("ocio|%s|%d|%d", c.path, info.Size(), info.ModTime().UnixNano())

	if c.store != nil {
		var cached []types.ColorSpaceEntry
		found, err := c.store.Get(key, &cached)
		if err != nil {
			log.Printf("[Cache] WARNING: %v", err)
		} else if found {
			return cached, nil
		}
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open ocio config: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, err
	}
	log.Printf("[Backend] Parsed %d color spaces from %s", len(entries), c.path)

	if c.store != nil {
		if err := c.store.Put(key, entries); err != nil {
			log.Printf("[Cache] WARNING: %v", err)
		}
	}
	return entries, nil
}
