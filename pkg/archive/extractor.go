// Package archive implements the Archive Extractor: it opens a
// ZIP/JAR pack into a temporary working directory, or shallow-copies a
// directory pack in place, so every downstream component operates on a
// plain filesystem tree regardless of the pack's original shape.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/packforge/combiner/pkg/logger"
)

var extractLog = logger.New("archive:extractor")

// ErrSourceMissing means neither an archive file nor a directory was given.
var ErrSourceMissing = errors.New("source missing: neither archive nor directory provided")

// ErrExtractionFailed wraps an I/O failure during archive extraction.
var ErrExtractionFailed = errors.New("extraction failed")

// ignoredNames are skipped when present in a pack.
var ignoredNames = map[string]bool{
	"__MACOSX":    true,
	".DS_Store":   true,
	"desktop.ini": true,
}

func isIgnored(name string) bool {
	if ignoredNames[name] {
		return true
	}
	return strings.HasPrefix(name, "README")
}

// Extract opens source (a .zip/.jar file, or a directory) into a subtree
// under extractionRoot and returns the path to that subtree. Idempotent:
// calling Extract twice with the same source and extractionRoot overwrites
// into the same target directory.
func Extract(source, extractionRoot string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrSourceMissing
		}
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	target := filepath.Join(extractionRoot, base)

	if info.IsDir() {
		extractLog.Printf("copying directory pack %s -> %s", source, target)
		if err := copyDir(source, target); err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		return target, nil
	}

	extractLog.Printf("extracting archive %s -> %s", source, target)
	if err := extractZip(source, target); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return target, nil
}

func extractZip(source, target string) error {
	r, err := zip.OpenReader(source)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.RemoveAll(target); err != nil {
		return err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return err
	}

	for _, f := range r.File {
		ignored := false
		for _, part := range strings.Split(f.Name, "/") {
			if isIgnored(part) {
				ignored = true
				break
			}
		}
		if ignored {
			continue
		}
		destPath := filepath.Join(target, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(destPath, filepath.Clean(target)+string(os.PathSeparator)) && destPath != filepath.Clean(target) {
			return fmt.Errorf("illegal file path in archive: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}

		if err := extractZipEntry(f, destPath); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

func copyDir(source, target string) error {
	if err := os.RemoveAll(target); err != nil {
		return err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return err
	}
	return filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if isIgnored(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(target, rel)
		if info.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		return copyFile(path, dest, info.Mode())
	})
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// DiscoverPackSources scans workDir for pack sources: every *.zip, *.jar,
// and subdirectory (excluding "output" and anything prefixed "_").
func DiscoverPackSources(workDir string) ([]string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("reading working directory: %w", err)
	}

	var sources []string
	for _, entry := range entries {
		name := entry.Name()
		if name == "output" || strings.HasPrefix(name, "_") {
			continue
		}
		if entry.IsDir() {
			sources = append(sources, filepath.Join(workDir, name))
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".zip" || ext == ".jar" {
			sources = append(sources, filepath.Join(workDir, name))
		}
	}
	return sources, nil
}

// DisplayName returns the pack display name for a source path:
// the directory name for a directory pack, the archive stem for an archive
// pack. Base packs are displayed as "BASE" by the caller once classified.
func DisplayName(source string) string {
	base := filepath.Base(source)
	if ext := filepath.Ext(base); ext == ".zip" || ext == ".jar" {
		return strings.TrimSuffix(base, ext)
	}
	return base
}
