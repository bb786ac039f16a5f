package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/epikoding/dictionary/internal/config"
	"github.com/epikoding/dictionary/internal/database"
	"github.com/epikoding/dictionary/internal/dictionary"
	"github.com/epikoding/dictionary/internal/export"
	"github.com/epikoding/dictionary/internal/store"
	"github.com/epikoding/dictionary/internal/users"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command line flags
	migrateOnly := flag.Bool("migrate-only", false, "Create the schema and exit")
	user := flag.String("user", "", "Owner of imported or exported entries")
	filePath := flag.String("file", "", "TSV file to import: word<TAB>meaning<TAB>category<TAB>memo")
	exportFormat := flag.String("export", "", "Print the user's entries as json, csv or md")
	hash := flag.String("hash", "", "Print a bcrypt hash of this password for USERS and exit")
	flag.Parse()

	if *hash != "" {
		h, err := users.HashPassword(*hash)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(h)
		return
	}

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migration
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Printf("Schema is up to date")

	if *migrateOnly {
		return
	}

	if *user == "" || (*filePath == "" && *exportFormat == "") {
		flag.Usage()
		os.Exit(2)
	}

	service := dictionary.NewService(store.NewEntryStore(db, cfg.DisplayLocation))
	ctx := context.Background()

	if *filePath != "" {
		inserted, skipped, err := importFile(ctx, service, *user, *filePath)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Import complete. Inserted: %d, Skipped: %d", inserted, skipped)
	}

	if *exportFormat != "" {
		format, err := export.ParseFormat(*exportFormat)
		if err != nil {
			log.Fatalf("%v", err)
		}
		entries, err := service.List(ctx, *user)
		if err != nil {
			log.Fatalf("Failed to list entries: %v", err)
		}
		if err := export.Write(os.Stdout, format, *user, entries); err != nil {
			log.Fatalf("Failed to export entries: %v", err)
		}
	}
}

func importFile(ctx context.Context, service *dictionary.Service, owner, path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	rows, err := parseTSV(file)
	if err != nil {
		return 0, 0, err
	}

	inserted, skipped := 0, 0
	for _, row := range rows {
		if _, err := service.Create(ctx, owner, row.input); err != nil {
			log.Printf("Line %d skipped: %v", row.line, err)
			skipped++
			continue
		}
		inserted++
	}
	return inserted, skipped, nil
}

type tsvRow struct {
	line  int
	input dictionary.Input
}

// parseTSV reads word, meaning, category and memo columns. Blank lines and
// lines starting with # are ignored; missing trailing columns are empty.
func parseTSV(r io.Reader) ([]tsvRow, error) {
	var rows []tsvRow
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		// Skip empty lines and comments
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		cols := strings.SplitN(text, "\t", 4)
		for len(cols) < 4 {
			cols = append(cols, "")
		}
		rows = append(rows, tsvRow{
			line: line,
			input: dictionary.Input{
				Word:     cols[0],
				Meaning:  cols[1],
				Category: cols[2],
				Memo:     strings.ReplaceAll(cols[3], `\n`, "\n"),
			},
		})
	}
	return rows, scanner.Err()
}
