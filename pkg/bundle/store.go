package bundle

import (
	"github.com/arthur-debert/packweaver/pkg/config"
	"github.com/arthur-debert/packweaver/pkg/errors"
	"github.com/arthur-debert/packweaver/pkg/logging"
	"github.com/arthur-debert/packweaver/pkg/paths"
	"github.com/arthur-debert/packweaver/pkg/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

// Store hands out validated bundles, loading each content type once.
// Bundles returned by a Store are shared and must be treated as read-only.
type Store struct {
	fs       afero.Fs
	settings *config.Settings
	paths    paths.Paths
	cache    *lru.Cache[string, *types.Bundle]
}

// NewStore creates a store backed by fs
func NewStore(fs afero.Fs, settings *config.Settings) (*Store, error) {
	p, err := paths.New(settings)
	if err != nil {
		return nil, err
	}
	size := settings.Engine.BundleCacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[string, *types.Bundle](size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create bundle cache")
	}
	return &Store{fs: fs, settings: settings, paths: p, cache: cache}, nil
}

// Get returns the bundle of contentType
func (s *Store) Get(contentType string) (*types.Bundle, error) {
	if b, ok := s.cache.Get(contentType); ok {
		return b, nil
	}

	ct, err := s.settings.ContentType(contentType)
	if err != nil {
		return nil, err
	}

	root, err := s.paths.ContentTypeRoot(contentType)
	if err != nil {
		return nil, err
	}
	b, err := Load(s.fs, contentType, root, ct.SubTrees)
	if err != nil {
		return nil, err
	}
	s.cache.Add(contentType, b)
	return b, nil
}

// Purge drops every cached bundle so the next Get rereads the content.
func (s *Store) Purge() {
	logger := logging.GetLogger("bundle")
	logger.Debug().Int("cached", s.cache.Len()).Msg("Purging bundle cache")
	s.cache.Purge()
}
