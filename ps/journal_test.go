package ps

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/db"
)

var testIdentity = core.Identity{Name: "test", Email: "test@test.com"}

func setupTestJournal(t *testing.T) *Journal {
	t.Helper()
	journal, err := NewMemoryJournal(testIdentity)
	if err != nil {
		t.Fatalf("Failed to create journal: %v", err)
	}
	return journal
}

func TestNewMemoryJournal(t *testing.T) {
	journal := setupTestJournal(t)

	if !journal.IsInitialized() {
		t.Error("Expected journal to be initialized")
	}
	if journal.LatestTransaction().Id != "" {
		t.Error("Expected no transactions in a new journal")
	}
	entries, err := journal.Entries()
	if err != nil || len(entries) != 0 {
		t.Errorf("Expected no entries, got %v (%v)", entries, err)
	}
}

func TestJournalNotInitialized(t *testing.T) {
	var journal Journal

	if journal.IsInitialized() {
		t.Error("Expected uninitialized journal to return false")
	}
	if err := journal.Record(db.Execution{SQL: "SELECT 1"}); err != ErrNotInitialized {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestJournalRecord(t *testing.T) {
	journal := setupTestJournal(t)
	started := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	executions := []db.Execution{
		{
			SQL:      "SELECT * FROM users",
			Columns:  []core.Column{{Name: "id", Type: core.IntType}},
			Rows:     3,
			Started:  started,
			Duration: 1500 * time.Microsecond,
		},
		{
			SQL:     "SELECT * FROM missing",
			Err:     errors.New("no such table"),
			Started: started.Add(time.Second),
		},
	}
	for _, execution := range executions {
		if err := journal.Record(execution); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := journal.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].SQL != "SELECT * FROM users" || entries[0].Rows != 3 || entries[0].DurationMs != 1.5 {
		t.Errorf("Unexpected first entry %+v", entries[0])
	}
	if entries[0].Columns[0].Type != core.IntType {
		t.Errorf("Expected column metadata kept, got %+v", entries[0].Columns)
	}
	if entries[1].Error != "no such table" {
		t.Errorf("Expected error text, got %q", entries[1].Error)
	}

	latest := journal.LatestTransaction()
	if latest.Author != "test <test@test.com>" {
		t.Errorf("Expected journal identity as author, got %q", latest.Author)
	}
}

func TestJournalAs(t *testing.T) {
	journal := setupTestJournal(t)
	alice := core.Identity{Name: "alice", Email: "alice@example.com"}

	if err := journal.As(alice).Record(db.Execution{SQL: "SELECT 1", Started: time.Now()}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if author := journal.LatestTransaction().Author; author != alice.String() {
		t.Errorf("Expected %s, got %s", alice, author)
	}
}

func TestJournalTransactionsSince(t *testing.T) {
	journal := setupTestJournal(t)
	before := time.Now().Add(-time.Minute)

	for i := 0; i < 3; i++ {
		if err := journal.Record(db.Execution{SQL: "SELECT 1", Started: time.Now()}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	transactions, err := journal.TransactionsSince(before)
	if err != nil {
		t.Fatalf("TransactionsSince failed: %v", err)
	}
	if len(transactions) != 3 {
		t.Errorf("Expected 3 transactions, got %d", len(transactions))
	}
	if transactions[0].Id != journal.LatestTransaction().Id {
		t.Error("Expected newest transaction first")
	}
}

func TestJournalPrune(t *testing.T) {
	journal := setupTestJournal(t)

	days := []time.Time{
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		if _, err := journal.Append(Entry{SQL: "SELECT 1", Started: day}, testIdentity); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	_, removed, err := journal.Prune(days[2], testIdentity)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 days removed, got %d", removed)
	}

	entries, err := journal.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 || !entries[0].Started.Equal(days[2]) {
		t.Errorf("Expected only the last day left, got %+v", entries)
	}

	if _, removed, _ := journal.Prune(days[0], testIdentity); removed != 0 {
		t.Errorf("Expected nothing to prune, got %d", removed)
	}
}

func TestCommitMessage(t *testing.T) {
	message := commitMessage(Entry{SQL: "SELECT *\n  FROM users"})
	if message != "SELECT * FROM users" {
		t.Errorf("Expected collapsed whitespace, got %q", message)
	}

	long := commitMessage(Entry{SQL: strings.Repeat("x", 100)})
	if len(long) != 72 || !strings.HasSuffix(long, "...") {
		t.Errorf("Expected truncated summary, got %q", long)
	}

	failed := commitMessage(Entry{SQL: "SELECT 1", Error: "boom"})
	if failed != "Failed: SELECT 1\n\nboom" {
		t.Errorf("Unexpected failure message %q", failed)
	}
}

func TestFileJournal(t *testing.T) {
	dir := t.TempDir()

	journal, err := NewFileJournal(dir, testIdentity, nil)
	if err != nil {
		t.Fatalf("Failed to create file journal: %v", err)
	}
	if err := journal.Record(db.Execution{SQL: "SELECT 1", Started: time.Now()}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	reopened, err := NewFileJournal(dir, testIdentity, nil)
	if err != nil {
		t.Fatalf("Failed to reopen file journal: %v", err)
	}
	entries, err := reopened.Entries()
	if err != nil || len(entries) != 1 {
		t.Errorf("Expected the entry to persist, got %v (%v)", entries, err)
	}
}

func TestJournalRemotes(t *testing.T) {
	journal := setupTestJournal(t)

	if err := journal.Push("", nil); err == nil {
		t.Error("Expected pushing an empty journal to fail")
	}

	if err := journal.AddRemote("origin", "https://example.com/journal.git"); err != nil {
		t.Fatalf("AddRemote failed: %v", err)
	}
	if err := journal.AddRemote("origin", "https://example.com/other.git"); err == nil {
		t.Error("Expected a duplicate remote to fail")
	}
}

func TestRemoteAuthMethod(t *testing.T) {
	var none *RemoteAuth
	if method, err := none.getAuthMethod(); method != nil || err != nil {
		t.Errorf("Expected no auth for nil config, got %v %v", method, err)
	}

	method, err := (&RemoteAuth{Type: AuthTypeToken, Token: "secret"}).getAuthMethod()
	if err != nil || method == nil {
		t.Fatalf("Expected token auth, got %v %v", method, err)
	}

	if _, err := (&RemoteAuth{Type: "kerberos"}).getAuthMethod(); err == nil {
		t.Error("Expected unknown auth type to fail")
	}
}
