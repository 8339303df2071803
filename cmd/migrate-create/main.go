package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const migrationsDir = "db/migrations"

func main() {
	name := flag.String("name", "", "migration name, e.g. add_rounds_table")
	flag.Parse()
	if *name == "" && flag.NArg() > 0 {
		*name = flag.Arg(0)
	}

	slug := strings.Join(strings.Fields(strings.TrimSpace(*name)), "_")
	if slug == "" {
		log.Fatal("usage: migrate-create -name add_rounds_table")
	}

	version := time.Now().UTC().Format("20060102150405")
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		log.Fatalf("migrations dir: %v", err)
	}

	for _, direction := range []string{"up", "down"} {
		path := filepath.Join(migrationsDir, fmt.Sprintf("%s_%s.%s.sql", version, slug, direction))
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("refusing to overwrite %s", path)
		} else if !os.IsNotExist(err) {
			log.Fatalf("stat %s: %v", path, err)
		}
		placeholder := fmt.Sprintf("-- %s: %s\n", slug, direction)
		if err := os.WriteFile(path, []byte(placeholder), 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("migration created path=%s", path)
	}
}
