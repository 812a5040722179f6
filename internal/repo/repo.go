// Package repo locates and creates exam banks on disk.
//
// A bank lives in a .exambank directory holding one or more SQLite
// databases: exambank.db by default, exambank-<name>.db for named banks.
// Discovery walks up from the working directory the way git looks for .git,
// stopping at the first .exambank directory holding the requested file.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpl-au/exambank/internal/store"
)

const (
	// Dir is the directory holding a bank.
	Dir = ".exambank"
	// DBFile is the default database filename.
	DBFile = "exambank.db"

	dbPrefix = "exambank-"
)

// ErrNotInitialised is returned when no bank is found.
var ErrNotInitialised = errors.New("exambank not initialised (run 'exambank init')")

// DBFileName maps a bank name to its file: "" is exambank.db, "term2" is
// exambank-term2.db and a name ending in .db is used as given.
func DBFileName(name string) string {
	switch {
	case name == "":
		return DBFile
	case strings.HasSuffix(name, ".db"):
		return name
	default:
		return dbPrefix + name + ".db"
	}
}

// Init creates the .exambank directory under dir (the working directory
// when empty) and an initialised database named db inside it. An existing
// database is only replaced when force is set. With local the database is
// listed in .exambank/.gitignore so it stays out of version control.
func Init(force bool, db string, local bool, dir string) error {
	if dir == "" {
		dir = "."
	}
	bankDir := filepath.Join(dir, Dir)
	dbPath := filepath.Join(bankDir, DBFileName(db))

	if _, err := os.Stat(dbPath); err == nil {
		if !force {
			return fmt.Errorf("database %s already exists (use --force to reinitialise)", DBFileName(db))
		}
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove database: %w", err)
			}
		}
	}

	if err := os.MkdirAll(bankDir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	if err := s.Init(); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	// Written once; later inits for named banks keep any local markers.
	gitignore := filepath.Join(bankDir, ".gitignore")
	if _, err := os.Stat(gitignore); os.IsNotExist(err) {
		s := `# exambank - ignore local config and WAL side files
# Database files (*.db) hold the bank and should be committed
config.yaml
*.db-wal
*.db-shm
`
		if err := os.WriteFile(gitignore, []byte(s), 0644); err != nil {
			return fmt.Errorf("write gitignore: %w", err)
		}
	}

	if local {
		if err := IgnoreDB(db, bankDir); err != nil {
			return fmt.Errorf("ignore database: %w", err)
		}
	}
	return nil
}

// Discover returns the path of database db in the nearest .exambank
// directory at or above the working directory.
func Discover(db string) (string, error) {
	file := DBFileName(db)
	var found string
	err := walkUp(func(dir string) bool {
		p := filepath.Join(dir, Dir, file)
		if _, err := os.Stat(p); err == nil {
			found = p
			return true
		}
		return false
	})
	return found, err
}

// DiscoverDir returns the nearest .exambank directory at or above the
// working directory.
func DiscoverDir() (string, error) {
	var found string
	err := walkUp(func(dir string) bool {
		p := filepath.Join(dir, Dir)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			found = p
			return true
		}
		return false
	})
	return found, err
}

// walkUp calls match on the working directory and each parent until it
// returns true. Reaching the root without a match is ErrNotInitialised.
func walkUp(match func(dir string) bool) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	for {
		if match(dir) {
			return nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ErrNotInitialised
		}
		dir = parent
	}
}

// DBInfo describes one bank database.
type DBInfo struct {
	Name  string `json:"name"`  // "" for the default bank
	File  string `json:"file"`  // exambank.db, exambank-term2.db
	Path  string `json:"path"`  // full path
	Local bool   `json:"local"` // listed in .gitignore
}

// ListDBs returns the banks in dir, discovering the .exambank directory
// when dir is empty.
func ListDBs(dir string) ([]DBInfo, error) {
	if dir == "" {
		var err error
		if dir, err = DiscoverDir(); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Dir, err)
	}

	var dbs []DBInfo
	for _, e := range entries {
		file := e.Name()
		var name string
		switch {
		case file == DBFile:
		case strings.HasPrefix(file, dbPrefix) && strings.HasSuffix(file, ".db"):
			name = strings.TrimSuffix(strings.TrimPrefix(file, dbPrefix), ".db")
		default:
			continue
		}
		// An unreadable .gitignore reads as shared.
		local, _ := IsIgnored(name, dir)
		dbs = append(dbs, DBInfo{
			Name:  name,
			File:  file,
			Path:  filepath.Join(dir, file),
			Local: local,
		})
	}
	return dbs, nil
}
