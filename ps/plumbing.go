package ps

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/nickyhof/CommitQuery/core"
)

// The journal writes objects straight into the object store. It never
// checks out a worktree.

func (j *Journal) createBlob(data []byte) (plumbing.Hash, error) {
	obj := j.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to create blob writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to write blob data: %w", err)
	}
	writer.Close()

	hash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store blob: %w", err)
	}
	return hash, nil
}

// headTree returns the tree of HEAD, or ZeroHash before the first commit.
func (j *Journal) headTree() (plumbing.Hash, error) {
	headRef, err := j.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, nil
	}

	commit, err := j.repo.CommitObject(headRef.Hash())
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get head commit: %w", err)
	}
	return commit.TreeHash, nil
}

func (j *Journal) treeEntries(treeHash plumbing.Hash) (map[string]object.TreeEntry, error) {
	entries := make(map[string]object.TreeEntry)
	if treeHash == plumbing.ZeroHash {
		return entries, nil
	}

	tree, err := object.GetTree(j.repo.Storer, treeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	for _, entry := range tree.Entries {
		entries[entry.Name] = entry
	}
	return entries, nil
}

// storeTree writes a tree from entries, or returns ZeroHash when empty.
func (j *Journal) storeTree(entries map[string]object.TreeEntry) (plumbing.Hash, error) {
	if len(entries) == 0 {
		return plumbing.ZeroHash, nil
	}

	list := make([]object.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		list = append(list, entry)
	}
	// Git orders directories as if their name had a trailing slash.
	sort.Slice(list, func(a, b int) bool {
		nameA, nameB := list[a].Name, list[b].Name
		if list[a].Mode == filemode.Dir {
			nameA += "/"
		}
		if list[b].Mode == filemode.Dir {
			nameB += "/"
		}
		return nameA < nameB
	})

	obj := j.repo.Storer.NewEncodedObject()
	if err := (&object.Tree{Entries: list}).Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}
	hash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}
	return hash, nil
}

// putPath sets the blob at a slash separated path and returns the new
// root tree.
func (j *Journal) putPath(treeHash plumbing.Hash, filePath string, blobHash plumbing.Hash) (plumbing.Hash, error) {
	return j.putParts(treeHash, strings.Split(filePath, "/"), blobHash)
}

func (j *Journal) putParts(treeHash plumbing.Hash, parts []string, blobHash plumbing.Hash) (plumbing.Hash, error) {
	entries, err := j.treeEntries(treeHash)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	name := parts[0]
	if len(parts) == 1 {
		entries[name] = object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: blobHash}
		return j.storeTree(entries)
	}

	subTree := plumbing.ZeroHash
	if existing, ok := entries[name]; ok && existing.Mode == filemode.Dir {
		subTree = existing.Hash
	}
	newSubTree, err := j.putParts(subTree, parts[1:], blobHash)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	entries[name] = object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: newSubTree}
	return j.storeTree(entries)
}

// removeEntries drops the named entries of the directory at dirPath.
// Directories left empty are removed as well.
func (j *Journal) removeEntries(treeHash plumbing.Hash, dirPath string, names []string) (plumbing.Hash, error) {
	return j.removeParts(treeHash, strings.Split(dirPath, "/"), names)
}

func (j *Journal) removeParts(treeHash plumbing.Hash, parts []string, names []string) (plumbing.Hash, error) {
	entries, err := j.treeEntries(treeHash)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if len(parts) == 0 {
		for _, name := range names {
			delete(entries, name)
		}
		return j.storeTree(entries)
	}

	existing, ok := entries[parts[0]]
	if !ok || existing.Mode != filemode.Dir {
		return treeHash, nil
	}
	newSubTree, err := j.removeParts(existing.Hash, parts[1:], names)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if newSubTree == plumbing.ZeroHash {
		delete(entries, parts[0])
	} else {
		entries[parts[0]] = object.TreeEntry{Name: parts[0], Mode: filemode.Dir, Hash: newSubTree}
	}
	return j.storeTree(entries)
}

// commit records treeHash on top of HEAD and moves the current branch.
func (j *Journal) commit(treeHash plumbing.Hash, identity core.Identity, message string) (Transaction, error) {
	if treeHash == plumbing.ZeroHash {
		hash, err := j.storeEmptyTree()
		if err != nil {
			return Transaction{}, err
		}
		treeHash = hash
	}

	var parents []plumbing.Hash
	headRef, err := j.repo.Head()
	if err == nil {
		parents = []plumbing.Hash{headRef.Hash()}
	}

	sig := object.Signature{
		Name:  identity.Name,
		Email: identity.Email,
		When:  time.Now(),
	}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parents,
	}

	obj := j.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return Transaction{}, fmt.Errorf("failed to encode commit: %w", err)
	}
	commitHash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to store commit: %w", err)
	}

	branch := plumbing.Master
	if headRef != nil && headRef.Name().IsBranch() {
		branch = headRef.Name()
	}
	if err := j.repo.Storer.SetReference(plumbing.NewHashReference(branch, commitHash)); err != nil {
		return Transaction{}, fmt.Errorf("failed to update HEAD: %w", err)
	}

	return Transaction{
		Id:     commitHash.String(),
		When:   sig.When,
		Author: identity.String(),
	}, nil
}

func (j *Journal) storeEmptyTree() (plumbing.Hash, error) {
	obj := j.repo.Storer.NewEncodedObject()
	if err := (&object.Tree{}).Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode empty tree: %w", err)
	}
	hash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store empty tree: %w", err)
	}
	return hash, nil
}
