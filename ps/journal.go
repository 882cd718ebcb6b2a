package ps

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/db"
)

const (
	journalDir = "journal"
	dayLayout  = "2006-01-02"
)

// Entry is the stored form of one execution.
type Entry struct {
	SQL        string        `json:"sql"`
	Columns    []core.Column `json:"columns,omitempty"`
	Rows       int           `json:"rows"`
	InsertID   int64         `json:"insertId,omitempty"`
	Error      string        `json:"error,omitempty"`
	Started    time.Time     `json:"started"`
	DurationMs float64       `json:"durationMs"`
}

func EntryOf(execution db.Execution) Entry {
	entry := Entry{
		SQL:        execution.SQL,
		Columns:    execution.Columns,
		Rows:       execution.Rows,
		InsertID:   execution.InsertID,
		Started:    execution.Started.UTC(),
		DurationMs: float64(execution.Duration.Microseconds()) / 1000,
	}
	if execution.Err != nil {
		entry.Error = execution.Err.Error()
	}
	return entry
}

// Record stores execution authored by the journal identity. It makes the
// journal a db.Recorder.
func (j *Journal) Record(execution db.Execution) error {
	_, err := j.Append(EntryOf(execution), j.identity)
	return err
}

// As returns a recorder that authors entries as identity.
func (j *Journal) As(identity core.Identity) db.Recorder {
	return identityRecorder{journal: j, identity: identity}
}

type identityRecorder struct {
	journal  *Journal
	identity core.Identity
}

func (r identityRecorder) Record(execution db.Execution) error {
	_, err := r.journal.Append(EntryOf(execution), r.identity)
	return err
}

// Append commits entry under journal/<day>/.
func (j *Journal) Append(entry Entry, identity core.Identity) (Transaction, error) {
	if err := j.ensureInitialized(); err != nil {
		return Transaction{}, err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to encode entry: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.sequence++
	entryPath := path.Join(journalDir, entry.Started.UTC().Format(dayLayout),
		fmt.Sprintf("%020d-%06d.json", entry.Started.UnixNano(), j.sequence))

	blob, err := j.createBlob(data)
	if err != nil {
		return Transaction{}, err
	}
	tree, err := j.headTree()
	if err != nil {
		return Transaction{}, err
	}
	tree, err = j.putPath(tree, entryPath, blob)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to update tree: %w", err)
	}

	return j.commit(tree, identity, commitMessage(entry))
}

func commitMessage(entry Entry) string {
	summary := strings.Join(strings.Fields(entry.SQL), " ")
	if len(summary) > 72 {
		summary = summary[:69] + "..."
	}
	if entry.Error != "" {
		return "Failed: " + summary + "\n\n" + entry.Error
	}
	return summary
}

// Entries returns every stored entry in the order it was recorded.
func (j *Journal) Entries() ([]Entry, error) {
	if err := j.ensureInitialized(); err != nil {
		return nil, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	dir, err := j.journalTree()
	if err != nil || dir == nil {
		return nil, err
	}

	var entries []Entry
	err = dir.Files().ForEach(func(file *object.File) error {
		content, err := file.Contents()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file.Name, err)
		}
		var entry Entry
		if err := json.Unmarshal([]byte(content), &entry); err != nil {
			return fmt.Errorf("failed to decode %s: %w", file.Name, err)
		}
		entries = append(entries, entry)
		return nil
	})
	return entries, err
}

// Prune removes the entries of every day before the day of before and
// commits the removal. It returns the number of days removed.
func (j *Journal) Prune(before time.Time, identity core.Identity) (Transaction, int, error) {
	if err := j.ensureInitialized(); err != nil {
		return Transaction{}, 0, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	dir, err := j.journalTree()
	if err != nil || dir == nil {
		return Transaction{}, 0, err
	}

	cutoff := before.UTC().Format(dayLayout)
	var days []string
	for _, entry := range dir.Entries {
		if entry.Mode == filemode.Dir && entry.Name < cutoff {
			days = append(days, entry.Name)
		}
	}
	if len(days) == 0 {
		return Transaction{}, 0, nil
	}

	tree, err := j.headTree()
	if err != nil {
		return Transaction{}, 0, err
	}
	tree, err = j.removeEntries(tree, journalDir, days)
	if err != nil {
		return Transaction{}, 0, fmt.Errorf("failed to update tree: %w", err)
	}

	txn, err := j.commit(tree, identity, fmt.Sprintf("Pruning %d day(s) before %s", len(days), cutoff))
	return txn, len(days), err
}

// journalTree returns the journal directory at HEAD, nil when absent.
func (j *Journal) journalTree() (*object.Tree, error) {
	headRef, err := j.repo.Head()
	if err != nil {
		return nil, nil
	}
	commit, err := j.repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	dir, err := tree.Tree(journalDir)
	if err != nil {
		return nil, nil
	}
	return dir, nil
}
