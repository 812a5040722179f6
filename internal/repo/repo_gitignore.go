// repo_gitignore.go keeps local banks out of version control.
//
// A local bank is one whose database file is listed in .exambank/.gitignore
// under a marker comment. Only the database lines are touched; anything else
// in the file is left as written.

package repo

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const localDBHeader = "# Local banks (not committed)"

func gitignorePath(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = DiscoverDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ".gitignore"), nil
}

func readLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines, nil
}

// IgnoreDB lists bank name in the .gitignore of dir.
func IgnoreDB(name, dir string) error {
	path, err := gitignorePath(dir)
	if err != nil {
		return err
	}
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	file := DBFileName(name)
	if slices.Contains(lines, file) {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s := string(content)
	if !slices.Contains(lines, localDBHeader) {
		s += "\n" + localDBHeader + "\n"
	}
	s += file + "\n"
	return os.WriteFile(path, []byte(s), 0644)
}

// UnignoreDB removes bank name from the .gitignore of dir, dropping the
// marker comment once no local banks remain.
func UnignoreDB(name, dir string) error {
	path, err := gitignorePath(dir)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	file := DBFileName(name)
	var out []string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) != file {
			out = append(out, line)
		}
	}

	result := strings.Join(out, "\n")
	if idx := strings.Index(result, localDBHeader); idx != -1 {
		rest := result[idx+len(localDBHeader):]
		if !strings.Contains(rest, ".db") {
			result = strings.TrimRight(result[:idx], "\n") + "\n"
		}
	}
	return os.WriteFile(path, []byte(result), 0644)
}

// IsIgnored reports whether bank name is listed in the .gitignore of dir.
func IsIgnored(name, dir string) (bool, error) {
	path, err := gitignorePath(dir)
	if err != nil {
		return false, err
	}
	lines, err := readLines(path)
	if err != nil {
		return false, err
	}
	return slices.Contains(lines, DBFileName(name)), nil
}
