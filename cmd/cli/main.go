package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/nickyhof/CommitQuery"
	"github.com/nickyhof/CommitQuery/conn/duckdb"
	"github.com/nickyhof/CommitQuery/conn/sqlite"
	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/db"
	"github.com/nickyhof/CommitQuery/ps"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

// CLI holds the CLI state
type CLI struct {
	instance    *CommitQuery.Instance
	driver      string
	out         io.Writer
	history     []string
	historyFile string
	stream      bool       // print rows as they are delivered
	last        *db.Result // result of the last statement, for .export
	s3          *db.S3Config
	auth        *ps.RemoteAuth
}

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
	driver := flag.String("driver", "sqlite", "Database driver (sqlite or duckdb)")
	dsn := flag.String("dsn", "", "Database file (in-memory if empty)")
	baseDir := flag.String("baseDir", "", "Journal directory (memory if empty)")
	gitUrl := flag.String("gitUrl", "", "Git URL to clone the journal from")
	sqlFile := flag.String("sqlFile", "", "SQL file or URL to execute (non-interactive)")
	userName := flag.String("name", "CommitQuery", "User name for journal commits")
	userEmail := flag.String("email", "cli@commitquery.local", "User email for journal commits")
	gitToken := flag.String("gitToken", "", "Token used by .push")
	s3Region := flag.String("s3Region", "", "S3 region for s3:// paths")
	s3Endpoint := flag.String("s3Endpoint", "", "S3 compatible endpoint for s3:// paths")
	flag.Parse()

	printBanner()

	identity := core.Identity{
		Name:  *userName,
		Email: *userEmail,
	}

	var journal *ps.Journal
	var err error
	if *baseDir == "" {
		fmt.Printf("%sUsing memory journal%s\n", SuccessColor, ResetColor)
		journal, err = ps.NewMemoryJournal(identity)
	} else {
		fmt.Printf("%sUsing file journal: %s%s\n", SuccessColor, *baseDir, ResetColor)
		var gitUrlPtr *string
		if *gitUrl != "" {
			gitUrlPtr = gitUrl
		}
		journal, err = ps.NewFileJournal(*baseDir, identity, gitUrlPtr)
	}
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}

	connection, err := newConnection(*driver, *dsn)
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}

	instance, err := CommitQuery.Open(context.Background(), connection, CommitQuery.Options{Journal: journal})
	if err != nil {
		fmt.Printf("%sError opening %s: %v%s\n", ErrorColor, *driver, err, ResetColor)
		os.Exit(1)
	}
	defer instance.Close()

	cli := &CLI{
		instance:    instance,
		driver:      *driver,
		out:         os.Stdout,
		history:     make([]string, 0),
		historyFile: getHistoryPath(),
		s3:          &db.S3Config{Region: *s3Region, Endpoint: *s3Endpoint},
	}
	if *gitToken != "" {
		cli.auth = &ps.RemoteAuth{Type: ps.AuthTypeToken, Token: *gitToken}
	}

	cli.loadHistory()

	// Execute SQL file if provided
	if *sqlFile != "" {
		err := cli.importFile(*sqlFile)
		if err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		return
	}

	cli.run()
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("CommitQuery v%s", Version)
	padding := bannerWidth - len(versionLine) - 2 // -2 for "  " margins
	if padding < 0 {
		padding = 0
	}
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║   Async SQL with a git journal        ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

func (cli *CLI) printf(format string, args ...any) {
	fmt.Fprintf(cli.out, format, args...)
}

func (cli *CLI) errorf(format string, args ...any) {
	cli.printf("%s✗ "+format+"%s\n", append(append([]any{ErrorColor}, args...), ResetColor)...)
}

func (cli *CLI) run() {
	reader := bufio.NewReader(os.Stdin)
	var multiLineBuffer strings.Builder

	for {
		// Show prompt
		prompt := cli.getPrompt(multiLineBuffer.Len() > 0)
		fmt.Print(prompt)

		// Read input
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			cli.saveHistory()
			return
		}

		input = strings.TrimSuffix(input, "\n")
		input = strings.TrimSuffix(input, "\r")

		if strings.TrimSpace(input) == "" {
			continue
		}

		// Check for special commands (only when not in multi-line mode)
		if multiLineBuffer.Len() == 0 && strings.HasPrefix(input, ".") {
			if cli.handleCommand(input) {
				continue
			}
		}

		// Multi-line support: accumulate until we see a semicolon
		multiLineBuffer.WriteString(input)

		trimmed := strings.TrimSpace(multiLineBuffer.String())
		if !strings.HasSuffix(trimmed, ";") {
			multiLineBuffer.WriteString(" ")
			continue
		}

		sql := strings.TrimSuffix(trimmed, ";")
		multiLineBuffer.Reset()

		if strings.TrimSpace(sql) == "" {
			continue
		}

		cli.addToHistory(sql + ";")
		cli.execute(sql)
	}
}

// execute runs one statement and prints its result table.
func (cli *CLI) execute(sql string) {
	ctx := context.Background()

	if cli.stream {
		if err := cli.executeStream(ctx, sql); err != nil {
			cli.errorf("Error: %v", err)
		}
		return
	}

	result, err := cli.instance.Query().Run(ctx, sql)
	if err != nil {
		cli.errorf("Error: %v", err)
		return
	}
	cli.last = result
	result.Fprint(cli.out)
}

// executeStream prints each row as its notification is delivered.
func (cli *CLI) executeStream(ctx context.Context, sql string) error {
	var failure error
	query := cli.instance.Query().On(db.ListenerFuncs{
		Row: func(row db.Row, index int, last bool) {
			cli.printf("%d: %s\n", index+1, formatRow(row))
		},
		Success: func(rows []db.Row, columns []core.Column) {
			cli.printf("%s✓ %d rows%s\n", SuccessColor, len(rows), ResetColor)
		},
		Error: func(err error) {
			failure = err
		},
	})

	if err := query.Execute(ctx, sql); err != nil {
		return err
	}
	if err := cli.instance.Wait(ctx); err != nil {
		return err
	}
	return failure
}

func formatRow(row db.Row) string {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + db.FormatValue(row[name])
	}
	return strings.Join(parts, " ")
}

func (cli *CLI) getPrompt(multiLine bool) string {
	if multiLine {
		return fmt.Sprintf("%s   ...>%s ", PromptColor, ResetColor)
	}

	mode := ""
	if cli.stream {
		mode = " stream"
	}

	return fmt.Sprintf("%scommitquery (%s%s)>%s ", PromptColor, cli.driver, mode, ResetColor)
}

func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(strings.TrimSpace(input))

	if len(parts) == 0 {
		return true
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit", ".q":
		fmt.Printf("%sGoodbye!%s\n", SuccessColor, ResetColor)
		cli.saveHistory()
		os.Exit(0)

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".tables":
		cli.showTables()

	case ".stream":
		cli.stream = !cli.stream
		cli.printf("%s✓ Streaming %s%s\n", SuccessColor, onOff(cli.stream), ResetColor)

	case ".clear", ".cls":
		fmt.Print("\033[H\033[2J")

	case ".history":
		cli.printHistory()

	case ".version":
		cli.printf("CommitQuery version %s\n", Version)

	case ".import":
		if len(parts) > 1 {
			if err := cli.importFile(parts[1]); err != nil {
				cli.errorf("Error: %v", err)
			}
		} else {
			cli.errorf("Usage: .import <file.sql|url>")
		}

	case ".export":
		if len(parts) > 1 {
			cli.exportResult(parts[1])
		} else {
			cli.errorf("Usage: .export <file.csv|s3://bucket/key>")
		}

	case ".log":
		limit := 10
		if len(parts) > 1 {
			if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 {
				limit = n
			}
		}
		cli.showLog(limit)

	case ".remote":
		if len(parts) > 2 {
			if err := cli.instance.Journal.AddRemote(parts[1], parts[2]); err != nil {
				cli.errorf("Error: %v", err)
			} else {
				cli.printf("%s✓ Added remote %s%s\n", SuccessColor, parts[1], ResetColor)
			}
		} else {
			cli.errorf("Usage: .remote <name> <url>")
		}

	case ".push":
		remote := "origin"
		if len(parts) > 1 {
			remote = parts[1]
		}
		if err := cli.instance.Journal.Push(remote, cli.auth); err != nil {
			cli.errorf("Error: %v", err)
		} else {
			cli.printf("%s✓ Pushed journal to %s%s\n", SuccessColor, remote, ResetColor)
		}

	default:
		cli.errorf("Unknown command: %s (type .help for commands)", parts[0])
	}

	return true
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (cli *CLI) printHelp() {
	cli.printf("\n%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	cli.printf("  .help, .h            Show this help message\n")
	cli.printf("  .quit, .exit         Exit the CLI\n")
	cli.printf("  .tables              List tables\n")
	cli.printf("  .stream              Toggle row-by-row output\n")
	cli.printf("  .import <path>       Execute SQL statements from a file, http(s):// or s3:// URL\n")
	cli.printf("  .export <path>       Write the last result as CSV to a file or s3:// URL\n")
	cli.printf("  .log [n]             Show the last n journal entries\n")
	cli.printf("  .remote <name> <url> Add a journal remote\n")
	cli.printf("  .push [remote]       Push the journal (default origin)\n")
	cli.printf("  .history             Show command history\n")
	cli.printf("  .clear               Clear the screen\n")
	cli.printf("  .version             Show version info\n")
	cli.printf("\nStatements end with ';' and are sent to %s unchanged.\n\n", cli.driver)
}

func (cli *CLI) tablesQuery() string {
	if cli.driver == "duckdb" {
		return "SHOW TABLES"
	}
	return "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name"
}

func (cli *CLI) showTables() {
	cli.execute(cli.tablesQuery())
}

func (cli *CLI) exportResult(path string) {
	if cli.last == nil {
		cli.errorf("No result to export")
		return
	}
	if err := cli.last.Export(context.Background(), path, cli.s3); err != nil {
		cli.errorf("Error: %v", err)
		return
	}
	cli.printf("%s✓ Exported %d rows to %s%s\n", SuccessColor, len(cli.last.Rows), path, ResetColor)
}

func (cli *CLI) showLog(limit int) {
	entries, err := cli.instance.Journal.Entries()
	if err != nil {
		cli.errorf("Error: %v", err)
		return
	}
	if len(entries) == 0 {
		cli.printf("Journal is empty\n")
		return
	}

	start := 0
	if len(entries) > limit {
		start = len(entries) - limit
	}

	table := db.NewTable(cli.out)
	table.Header([]string{"Started", "SQL", "Rows", "Time", "Error"})
	for _, entry := range entries[start:] {
		table.Row([]string{
			entry.Started.Format("2006-01-02 15:04:05"),
			truncate(entry.SQL, 50),
			strconv.Itoa(entry.Rows),
			strconv.FormatFloat(entry.DurationMs, 'f', 1, 64) + "ms",
			entry.Error,
		})
	}
	table.Render()
}

func (cli *CLI) addToHistory(cmd string) {
	// Don't add duplicates of the last command
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	// Limit history size
	if len(cli.history) > 1000 {
		cli.history = cli.history[len(cli.history)-1000:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		cli.printf("No command history\n")
		return
	}

	start := 0
	if len(cli.history) > 20 {
		start = len(cli.history) - 20
	}

	for i := start; i < len(cli.history); i++ {
		cli.printf("  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".commitquery_history")
}

func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, scanner.Text())
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	// Save last 1000 entries
	start := 0
	if len(cli.history) > 1000 {
		start = len(cli.history) - 1000
	}

	for i := start; i < len(cli.history); i++ {
		_, _ = file.WriteString(cli.history[i] + "\n")
	}
}

// importFile reads and executes SQL statements from a local file or URL
func (cli *CLI) importFile(path string) error {
	ctx := context.Background()

	reader, err := db.OpenReader(ctx, path, cli.s3)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	statements := splitStatements(string(data))

	successCount := 0
	errorCount := 0

	for i, stmt := range statements {
		result, err := cli.instance.Query().Run(ctx, stmt)
		if err != nil {
			cli.printf("%s[%d] ✗ %s%s\n", ErrorColor, i+1, truncate(stmt, 50), ResetColor)
			cli.printf("      Error: %v\n", err)
			errorCount++
			continue
		}

		successCount++
		cli.last = result
		switch {
		case len(result.Columns) > 0:
			cli.printf("%s[%d] ✓ %s (%d rows)%s\n", SuccessColor, i+1, truncate(stmt, 50), len(result.Rows), ResetColor)
		case result.InsertID > 0:
			cli.printf("%s[%d] ✓ %s (insert id %d)%s\n", SuccessColor, i+1, truncate(stmt, 50), result.InsertID, ResetColor)
		default:
			cli.printf("%s[%d] ✓ %s%s\n", SuccessColor, i+1, truncate(stmt, 50), ResetColor)
		}
	}

	cli.printf("\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, successCount, errorCount, ResetColor)

	return nil
}

// splitStatements splits SQL content into individual statements
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := byte(0)

	for i := 0; i < len(content); i++ {
		ch := content[i]

		// Handle string literals
		if (ch == '\'' || ch == '"') && (i == 0 || content[i-1] != '\\') {
			if !inString {
				inString = true
				stringChar = ch
			} else if ch == stringChar {
				inString = false
			}
		}

		// Handle comments
		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			// Skip to end of line
			for i < len(content) && content[i] != '\n' {
				i++
			}
			continue
		}

		// Statement separator
		if !inString && ch == ';' {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	// Handle last statement without semicolon
	stmt := strings.TrimSpace(current.String())
	if stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
