package history

import "context"

// VCS is the capability the resolver needs from version control
type VCS interface {
	// ListRevisions returns the post-change object id of every recorded
	// change to rel, newest first. Deletions appear as all-zero ids.
	ListRevisions(ctx context.Context, rel string) ([]string, error)

	// FetchObject returns the raw content stored under ref
	FetchObject(ctx context.Context, ref string) ([]byte, error)
}

// IsZeroID reports whether id is the all-zero object id git uses for the
// missing side of a change. Any length is accepted so SHA-256 object
// format repositories work too.
func IsZeroID(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		if c != '0' {
			return false
		}
	}
	return true
}

func isHex(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
