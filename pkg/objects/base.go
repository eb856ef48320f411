package objects

import (
	"fmt"
	"sort"
)

// ObjectType represents the type of Git object
type ObjectType string

const (
	BlobType   ObjectType = "blob"
	TreeType   ObjectType = "tree"
	CommitType ObjectType = "commit"
	TagType    ObjectType = "tag"
)

// String implements the Stringer interface
func (o ObjectType) String() string {
	return string(o)
}

// ParseObjectType converts a string to ObjectType
func ParseObjectType(s string) (ObjectType, error) {
	switch ObjectType(s) {
	case BlobType, TreeType, CommitType, TagType:
		return ObjectType(s), nil
	default:
		return "", fmt.Errorf("unknown object type: %s", s)
	}
}

// IsGraphType reports whether objects of this type take part in the
// commit -> tree -> blob graph. Tags are enumerated by git but not kept.
func (o ObjectType) IsGraphType() bool {
	return o == CommitType || o == TreeType || o == BlobType
}

// ObjectHandle identifies one object in the repository's object database as
// reported by `git cat-file --batch-check`. Identity is the hash.
type ObjectHandle struct {
	Hash ObjectHash `json:"hash"`
	Type ObjectType `json:"type"`
	Size int64      `json:"size"`
}

// Handle returns the handle itself so that records embedding an
// ObjectHandle satisfy Record.
func (h ObjectHandle) Handle() ObjectHandle {
	return h
}

// String returns "<type> <short-hash> (<size> bytes)"
func (h ObjectHandle) String() string {
	return fmt.Sprintf("%s %s (%d bytes)", h.Type, h.Hash.Short(), h.Size)
}

// Record is a fully parsed object: a commit, tree or blob record.
type Record interface {
	Handle() ObjectHandle
}

// HandleSet is the result of one enumeration, partitioned by type.
// Each partition keeps the order in which git reported the objects.
type HandleSet struct {
	Commits []ObjectHandle `json:"commits"`
	Trees   []ObjectHandle `json:"trees"`
	Blobs   []ObjectHandle `json:"blobs"`
}

// Add places h into the partition matching its type.
// Returns false when the type is not part of the graph.
func (s *HandleSet) Add(h ObjectHandle) bool {
	switch h.Type {
	case CommitType:
		s.Commits = append(s.Commits, h)
	case TreeType:
		s.Trees = append(s.Trees, h)
	case BlobType:
		s.Blobs = append(s.Blobs, h)
	default:
		return false
	}
	return true
}

// Len returns the total number of handles.
func (s HandleSet) Len() int {
	return len(s.Commits) + len(s.Trees) + len(s.Blobs)
}

// All returns every handle: commits first, then trees, then blobs.
func (s HandleSet) All() []ObjectHandle {
	all := make([]ObjectHandle, 0, s.Len())
	all = append(all, s.Commits...)
	all = append(all, s.Trees...)
	all = append(all, s.Blobs...)
	return all
}

// Contains reports whether hash is present in any partition.
func (s HandleSet) Contains(hash ObjectHash) bool {
	for _, part := range [][]ObjectHandle{s.Commits, s.Trees, s.Blobs} {
		for _, h := range part {
			if h.Hash == hash {
				return true
			}
		}
	}
	return false
}

// Of returns the partition for the given type.
func (s HandleSet) Of(t ObjectType) []ObjectHandle {
	switch t {
	case CommitType:
		return s.Commits
	case TreeType:
		return s.Trees
	case BlobType:
		return s.Blobs
	default:
		return nil
	}
}

// Delta describes how one enumeration differs from the previous one.
type Delta struct {
	Added   []ObjectHandle `json:"added"`
	Removed []ObjectHandle `json:"removed"`
}

// Empty reports whether nothing changed.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Filter keeps only the handles of type t.
func (d Delta) Filter(t ObjectType) Delta {
	var out Delta
	for _, h := range d.Added {
		if h.Type == t {
			out.Added = append(out.Added, h)
		}
	}
	for _, h := range d.Removed {
		if h.Type == t {
			out.Removed = append(out.Removed, h)
		}
	}
	return out
}

// Diff computes the change from prev to s. Results are sorted by hash.
func (s HandleSet) Diff(prev HandleSet) Delta {
	before := indexHandles(prev.All())
	after := indexHandles(s.All())

	var d Delta
	for hash, h := range after {
		if _, ok := before[hash]; !ok {
			d.Added = append(d.Added, h)
		}
	}
	for hash, h := range before {
		if _, ok := after[hash]; !ok {
			d.Removed = append(d.Removed, h)
		}
	}

	sortHandles(d.Added)
	sortHandles(d.Removed)
	return d
}

func indexHandles(hs []ObjectHandle) map[ObjectHash]ObjectHandle {
	m := make(map[ObjectHash]ObjectHandle, len(hs))
	for _, h := range hs {
		m[h.Hash] = h
	}
	return m
}

func sortHandles(hs []ObjectHandle) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Hash < hs[j].Hash })
}
