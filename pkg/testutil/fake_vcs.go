package testutil

import (
	"context"
	"crypto/sha1"
	"fmt"
	"strings"
	"sync"
)

// ZeroObjectID is the object id git reports for the deleted side of a change
var ZeroObjectID = strings.Repeat("0", 40)

// FakeVCS is a scripted version-control backend. It satisfies
// history.VCS without touching a repository.
type FakeVCS struct {
	mu        sync.Mutex
	revisions map[string][]string
	objects   map[string][]byte
	errors    map[string]error
	fetches   map[string]int
}

// NewFakeVCS creates an empty fake backend
func NewFakeVCS() *FakeVCS {
	return &FakeVCS{
		revisions: make(map[string][]string),
		objects:   make(map[string][]byte),
		errors:    make(map[string]error),
		fetches:   make(map[string]int),
	}
}

// AddHistory appends revisions of rel, given newest first like git log.
// Identical contents share one object id. The returned ids match the
// order of contents.
func (f *FakeVCS) AddHistory(rel string, contents ...string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	refs := make([]string, 0, len(contents))
	for _, c := range contents {
		ref := BlobID(c)
		f.objects[ref] = []byte(c)
		refs = append(refs, ref)
	}
	f.revisions[rel] = append(f.revisions[rel], refs...)
	return refs
}

// AddDeletion records a change whose post-change side is the zero id
func (f *FakeVCS) AddDeletion(rel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revisions[rel] = append(f.revisions[rel], ZeroObjectID)
}

// AddRevision records a raw object id for rel without storing content,
// so FetchObject fails for it unless content is added separately.
func (f *FakeVCS) AddRevision(rel, ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revisions[rel] = append(f.revisions[rel], ref)
}

// FailOn makes any call naming key (a path or an object id) return err
func (f *FakeVCS) FailOn(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[key] = err
}

// ListRevisions returns the recorded object ids for rel
func (f *FakeVCS) ListRevisions(ctx context.Context, rel string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.errors[rel]; err != nil {
		return nil, err
	}
	return append([]string(nil), f.revisions[rel]...), nil
}

// FetchObject returns the content stored under ref
func (f *FakeVCS) FetchObject(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches[ref]++
	if err := f.errors[ref]; err != nil {
		return nil, err
	}
	content, ok := f.objects[ref]
	if !ok {
		return nil, fmt.Errorf("fatal: Not a valid object name %s", ref)
	}
	return append([]byte(nil), content...), nil
}

// Fetches reports how many times ref was fetched
func (f *FakeVCS) Fetches(ref string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[ref]
}

// BlobID computes the id git assigns to content as a blob
func BlobID(content string) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00%s", len(content), content)
	return fmt.Sprintf("%x", h.Sum(nil))
}
