// Package ps keeps a git-backed journal of executed statements.
//
// Every finished execution is stored as a JSON entry under
// journal/<day>/ and committed with go-git, authored by the identity that
// ran it. The journal works on an in-memory repository or on a directory,
// can be pushed to a remote and pruned by day.
//
// # Memory Journal
//
//	journal, err := ps.NewMemoryJournal(core.Identity{Name: "cli", Email: "cli@localhost"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	coordinator := db.NewCoordinator(db.CoordinatorOptions{Recorders: []db.Recorder{journal}})
//
// # File Journal
//
//	journal, err := ps.NewFileJournal("/var/lib/commitquery", identity, nil)
//
// # Reading
//
//	entries, err := journal.Entries()
//	latest := journal.LatestTransaction()
package ps
