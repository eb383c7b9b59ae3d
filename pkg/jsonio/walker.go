package jsonio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"

	"github.com/packforge/combiner/pkg/logger"
)

var walkerLog = logger.New("jsonio:walker")

// ErrMalformedEncoding marks a file that could not be read as UTF-8 text.
var ErrMalformedEncoding = errors.New("malformed encoding")

// ErrParse marks a file that decoded but was not valid JSON.
var ErrParse = errors.New("parse error")

// VisitFunc handles one decoded JSON file. Returning an error aborts the
// walk (structural errors only; parse failures never reach this far).
type VisitFunc func(path string, parsed Bag) error

// WarnFunc receives a message about a locally-recovered error (a skipped
// file). It is called only when warnings are enabled.
type WarnFunc func(path string, err error)

// Options controls a single ForEachJSON traversal.
type Options struct {
	// Pattern is a doublestar glob relative to root; "*.json" by default.
	Pattern string
	// Warn, if non-nil, is called for every file skipped due to a
	// MalformedEncoding or ParseError.
	Warn WarnFunc
}

// ForEachJSON recursively visits every file under root matching pattern,
// decoding each as JSON (via goccy/go-yaml, since JSON is a YAML subset) and
// calling visit with its path and parsed Bag. Files that are not valid UTF-8
// or not valid JSON are skipped and reported through opts.Warn; they never
// abort the walk. Any other error returned by visit propagates to the
// caller with the offending path attached.
func ForEachJSON(root string, opts Options, visit VisitFunc) error {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = "*.json"
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = d.Name()
		}
		matched, _ := doublestar.Match(pattern, filepath.ToSlash(rel))
		if !matched {
			matched, _ = doublestar.Match(pattern, d.Name())
		}
		if matched {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			walkerLog.Warnf("skipping unreadable file %s: %v", path, readErr)
			if opts.Warn != nil {
				opts.Warn(path, fmt.Errorf("%w: %v", ErrMalformedEncoding, readErr))
			}
			continue
		}

		var decoded any
		if decErr := yaml.Unmarshal(raw, &decoded); decErr != nil {
			walkerLog.Warnf("skipping malformed JSON %s: %s", path, FormatDecodeError(decErr, string(raw)))
			if opts.Warn != nil {
				opts.Warn(path, fmt.Errorf("%w: %v", ErrParse, decErr))
			}
			continue
		}

		if visitErr := visit(path, NewBag(decoded)); visitErr != nil {
			return fmt.Errorf("%s: %w", path, visitErr)
		}
	}
	return nil
}

// LoadFile decodes a single JSON file into a Bag, for callers that already
// have a specific path in hand (e.g. a resolver's own poser reference)
// rather than a directory to walk.
func LoadFile(path string) (Bag, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Bag{}, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	var decoded any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return Bag{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return NewBag(decoded), nil
}

// FormatDecodeError formats a decode error with source context.
// goccy/go-yaml's FormatError gives line/column-annotated output for free
// since JSON is valid YAML.
func FormatDecodeError(err error, source string) string {
	return yaml.FormatError(err, false, true)
}
