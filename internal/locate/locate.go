// Package locate finds companion test executables in a build tree.
package locate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// Default glob patterns for the engine's stdin test binaries.
const (
	ParameterizedTestPattern = "scn_stdin_parameterized_test*"
	StdinTestPattern         = "scn_stdin_test*"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("executable not found")

// NotFoundError reports a search that matched no file.
type NotFoundError struct {
	Root    string
	Pattern string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no file matching %q under %s", e.Pattern, e.Root)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ExecutablePattern appends the platform executable suffix to a pattern.
func ExecutablePattern(pattern string) string {
	return pattern + executableSuffix(runtime.GOOS)
}

func executableSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}

// Find walks root in lexical order and returns the first regular file, or
// symlink to one, whose base name matches pattern (shell glob syntax, as
// filepath.Match).
// A search without a match returns a *NotFoundError.
func Find(root, pattern string) (string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return "", fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("search root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("search root %s: not a directory", root)
	}

	var found string
	errFound := errors.New("found")
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped; the root itself was checked above.
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		// Pattern was validated above.
		if ok, _ := filepath.Match(pattern, d.Name()); !ok || !isRegularFile(path, d) {
			return nil
		}
		found = path
		return errFound
	})
	if errors.Is(err, errFound) {
		return found, nil
	}
	if err != nil {
		return "", fmt.Errorf("walk %s: %w", root, err)
	}
	return "", &NotFoundError{Root: root, Pattern: pattern}
}

// isRegularFile reports whether d is a regular file or a symlink that
// resolves to one.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
