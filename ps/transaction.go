package ps

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// Transaction is one journal commit.
type Transaction struct {
	Id     string
	When   time.Time
	Author string // "Name <email>" format
}

func (transaction Transaction) String() string {
	return fmt.Sprintf("Transaction{Id: %s, When: %s, Author: %s}", transaction.Id, transaction.When, transaction.Author)
}

func transactionOf(commit *object.Commit) Transaction {
	author := ""
	if commit.Author.Name != "" || commit.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email)
	}
	return Transaction{
		Id:     commit.Hash.String(),
		When:   commit.Committer.When,
		Author: author,
	}
}

// LatestTransaction returns the HEAD commit, or the zero Transaction for
// an empty journal.
func (j *Journal) LatestTransaction() Transaction {
	j.mu.Lock()
	defer j.mu.Unlock()

	headRef, err := j.repo.Head()
	if err != nil || headRef == nil {
		return Transaction{}
	}
	commit, err := j.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Transaction{}
	}
	return transactionOf(commit)
}

// TransactionsSince lists commits made at or after asof, newest first.
func (j *Journal) TransactionsSince(asof time.Time) ([]Transaction, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.repo.Head(); err != nil {
		return nil, nil
	}

	commits, err := j.repo.Log(&git.LogOptions{Since: &asof})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}

	var transactions []Transaction
	err = commits.ForEach(func(c *object.Commit) error {
		transactions = append(transactions, transactionOf(c))
		return nil
	})
	return transactions, err
}
