package history

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/logging"
	"github.com/arthur-debert/deftsilo/pkg/utils"
)

// Resolver turns a path's history into its SHA-256 allow-list. Blob hashes
// are memoised, so a blob shared between paths or revisions is fetched once.
type Resolver struct {
	vcs    VCS
	blobs  map[string]string
	logger zerolog.Logger
}

// NewResolver creates a resolver over vcs
func NewResolver(vcs VCS) *Resolver {
	return &Resolver{
		vcs:    vcs,
		blobs:  make(map[string]string),
		logger: logging.GetLogger("history"),
	}
}

// Hashes returns the content hash of every recorded version of rel in the
// order the backend lists them. Duplicates are kept. A path with no
// history yields an empty list.
func (r *Resolver) Hashes(ctx context.Context, rel string) ([]string, error) {
	refs, err := r.vcs.ListRevisions(ctx, rel)
	if err != nil {
		return nil, errors.Classify(err, errors.ErrSubprocess, "cannot list revisions").WithPath(rel)
	}

	hashes := make([]string, 0, len(refs))
	for _, ref := range refs {
		if IsZeroID(ref) {
			continue
		}
		hash, ok := r.blobs[ref]
		if !ok {
			content, err := r.vcs.FetchObject(ctx, ref)
			if err != nil {
				return nil, errors.Classify(err, errors.ErrSubprocess, "cannot fetch object").WithPath(rel).WithDetail("ref", ref)
			}
			hash = utils.ContentHash(content)
			r.blobs[ref] = hash
		}
		hashes = append(hashes, hash)
	}

	r.logger.Debug().Str("path", rel).Int("versions", len(hashes)).Msg("Resolved history")
	return hashes, nil
}
