package ps

import (
	"errors"
	"os"
	"sync"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"

	"github.com/nickyhof/CommitQuery/core"
)

var ErrNotInitialized = errors.New("journal not initialized")

// Journal records executions as commits in a git repository. It is safe
// for concurrent use.
type Journal struct {
	repo     *git.Repository
	mu       sync.Mutex
	identity core.Identity
	sequence uint64
}

// IsInitialized returns true if the journal has a valid repository
func (j *Journal) IsInitialized() bool {
	return j != nil && j.repo != nil
}

func (j *Journal) ensureInitialized() error {
	if !j.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

// Identity returns the default author of recorded entries.
func (j *Journal) Identity() core.Identity {
	return j.identity
}

func NewMemoryJournal(identity core.Identity) (*Journal, error) {
	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(memfs.New()))
	if err != nil {
		return nil, err
	}
	return &Journal{repo: repo, identity: identity}, nil
}

// NewFileJournal opens the journal repository in baseDir, creating it when
// missing. With gitUrl set, a missing repository is cloned instead.
func NewFileJournal(baseDir string, identity core.Identity, gitUrl *string) (*Journal, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	wt := osfs.New(baseDir)
	fs, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	_, statErr := os.Stat(fs.Root())
	switch {
	case statErr == nil:
		repo, err = git.Open(storer, wt)
	case gitUrl != nil:
		repo, err = git.Clone(storer, wt, &git.CloneOptions{URL: *gitUrl})
	default:
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	}
	if err != nil {
		return nil, err
	}

	return &Journal{repo: repo, identity: identity}, nil
}
