package mcommit

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gordian-engine/mcommit/mdigest"
	"github.com/gordian-engine/mcommit/mtree"
)

// CommitterConfig is the configuration for [NewCommitter].
type CommitterConfig struct {
	// How to hash elements and nodes.
	// Required.
	Hasher mdigest.Hasher

	// The elements of the first commitment.
	// There must be a positive power of two of them;
	// otherwise NewCommitter returns an error from [mtree.Build].
	InitialElements [][]byte
}

// validate panics if the configuration cannot be used at all.
func (c CommitterConfig) validate() {
	if c.Hasher == nil {
		panic(errors.New("CommitterConfig.Hasher must not be nil"))
	}
}

// Committer holds the current commitment over a list of elements.
//
// Reads never block: [*Committer.Tree], [*Committer.Root],
// and [*Committer.Proof] all work from an immutable snapshot.
// [*Committer.Append] builds the next tree off to the side
// and then replaces the snapshot in one step,
// so a reader observes either the old tree or the new one, never a mix.
//
// A Committer is safe for concurrent use.
type Committer struct {
	log *slog.Logger

	// Only held by writers.
	mu sync.Mutex

	cur atomic.Pointer[mtree.Tree]
}

// NewCommitter builds the initial tree over cfg.InitialElements
// and returns a Committer holding it.
//
// NewCommitter panics if cfg is missing required fields.
func NewCommitter(log *slog.Logger, cfg CommitterConfig) (*Committer, error) {
	cfg.validate()

	t, err := mtree.Build(cfg.Hasher, cfg.InitialElements)
	if err != nil {
		return nil, fmt.Errorf("failed to build initial tree: %w", err)
	}

	c := &Committer{log: log}
	c.cur.Store(t)

	root, _ := t.Root()
	log.Debug(
		"Built initial commitment",
		"root", root,
		"leaves", t.LeafCount(),
	)

	return c, nil
}

// Tree returns the current tree.
// The returned value is never modified,
// even by a later call to [*Committer.Append].
func (c *Committer) Tree() *mtree.Tree {
	return c.cur.Load()
}

// Root returns the root digest of the current tree.
func (c *Committer) Root() mdigest.Digest {
	// The current tree is never empty.
	root, _ := c.cur.Load().Root()
	return root
}

// LeafCount returns the number of elements in the current commitment.
func (c *Committer) LeafCount() int {
	return c.cur.Load().LeafCount()
}

// Proof returns the inclusion proof for the element at idx
// in the current tree.
//
// Use [*Committer.Tree] and [*mtree.Tree.Proof] instead
// if the proof must be paired with a particular root,
// as an append may happen between calls to Root and Proof.
func (c *Committer) Proof(idx int) ([]mdigest.Digest, error) {
	p, err := c.cur.Load().Proof(idx)
	if err != nil {
		return nil, fmt.Errorf("failed to derive proof: %w", err)
	}
	return p, nil
}

// Append commits to the current elements followed by elements,
// and returns the new tree.
//
// The combined element count must be a power of two.
// On error, the current tree is unchanged.
func (c *Committer) Append(elements [][]byte) (*mtree.Tree, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.cur.Load()
	t, err := old.Append(elements)
	if err != nil {
		return nil, fmt.Errorf("failed to append %d element(s): %w", len(elements), err)
	}

	c.cur.Store(t)

	oldRoot, _ := old.Root()
	newRoot, _ := t.Root()
	c.log.Debug(
		"Appended to commitment",
		"old_root", oldRoot,
		"new_root", newRoot,
		"appended", len(elements),
		"leaves", t.LeafCount(),
	)

	return t, nil
}

// Verify reports whether element is at idx in the current commitment,
// according to proof.
func (c *Committer) Verify(element []byte, idx int, proof []mdigest.Digest) (bool, error) {
	t := c.cur.Load()
	root, _ := t.Root()
	return mtree.VerifyElement(t.Hasher(), root, element, idx, proof)
}
