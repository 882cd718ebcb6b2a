package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nickyhof/CommitQuery"
	"github.com/nickyhof/CommitQuery/conn/duckdb"
	"github.com/nickyhof/CommitQuery/conn/sqlite"
	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/ps"
)

// Version is set at build time via -ldflags
var Version = "dev"

func newConnection(driver, dsn string) (core.Connection, error) {
	switch driver {
	case "sqlite":
		return sqlite.New(dsn), nil
	case "duckdb":
		return duckdb.New(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

func main() {
	port := flag.Int("port", 3306, "TCP port to listen on")
	driver := flag.String("driver", "sqlite", "Database driver (sqlite or duckdb)")
	dsn := flag.String("dsn", "", "Database file (in-memory if empty)")
	baseDir := flag.String("baseDir", "", "Journal directory (memory if empty)")
	gitUrl := flag.String("gitUrl", "", "Git URL to clone the journal from")
	workers := flag.Int("workers", 0, "Concurrent statements per client (GOMAXPROCS if 0)")
	jwtSecret := flag.String("jwtSecret", "", "Require AUTH JWT signed with this HMAC secret")
	jwtIssuer := flag.String("jwtIssuer", "", "Expected JWT issuer")
	jwtAudience := flag.String("jwtAudience", "", "Expected JWT audience")
	tlsCert := flag.String("tlsCert", "", "TLS certificate file")
	tlsKey := flag.String("tlsKey", "", "TLS key file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("CommitQuery SQL Server v%s\n", Version)
		return
	}

	identity := core.Identity{
		Name:  "CommitQuery Server",
		Email: "server@commitquery.local",
	}

	var journal *ps.Journal
	var err error
	if *baseDir == "" {
		log.Println("Using memory journal")
		journal, err = ps.NewMemoryJournal(identity)
	} else {
		log.Printf("Using file journal: %s", *baseDir)
		var gitUrlPtr *string
		if *gitUrl != "" {
			gitUrlPtr = gitUrl
		}
		journal, err = ps.NewFileJournal(*baseDir, identity, gitUrlPtr)
	}
	if err != nil {
		log.Fatalf("Failed to initialize journal: %v", err)
	}

	connection, err := newConnection(*driver, *dsn)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	instance, err := CommitQuery.Open(ctx, connection, CommitQuery.Options{
		Workers: *workers,
		Logger:  log.Default(),
		Journal: journal,
	})
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *driver, err)
	}
	defer instance.Close()

	var server *Server
	if *jwtSecret != "" {
		server = NewServerWithAuth(instance, &AuthConfig{
			Enabled:   true,
			JWTSecret: *jwtSecret,
			Issuer:    *jwtIssuer,
			Audience:  *jwtAudience,
		})
	} else {
		server = NewServer(instance, identity)
	}
	server.Workers = *workers

	addr := fmt.Sprintf(":%d", *port)
	if *tlsCert != "" || *tlsKey != "" {
		err = server.StartTLS(addr, *tlsCert, *tlsKey)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Print banner
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   CommitQuery SQL Server v%-11s  ║\n", Version)
	fmt.Println("║   Async SQL with a git journal        ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on port %d (%s)\n", *port, *driver)
	fmt.Println("Send SQL or JSON requests (one per line), 'quit' to disconnect")
	fmt.Println()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Server stopped")
}
