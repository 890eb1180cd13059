package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/firedocs/internal/model"
)

// ListDocSets returns the documentation sets (domain folders) below the
// output folder rel, sorted by name. A missing output folder yields no sets.
func (s *DirSink) ListDocSets(rel string) ([]model.DocSet, error) {
	dir, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var sets []model.DocSet
	for _, entry := range entries {
		if !entry.IsDir() || isHidden(entry.Name()) {
			continue
		}

		files, updated, err := scanMarkdown(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		sets = append(sets, model.DocSet{
			Name:      entry.Name(),
			Path:      path.Join(filepath.ToSlash(rel), entry.Name()),
			Files:     len(files),
			UpdatedAt: updated,
		})
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets, nil
}

// ListFiles returns the Markdown files below rel as sorted, slash-separated
// paths relative to rel.
func (s *DirSink) ListFiles(rel string) ([]string, error) {
	dir, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	files, _, err := scanMarkdown(dir)
	return files, err
}

// scanMarkdown walks dir and returns its Markdown files and the latest
// modification time among them. Hidden files and directories are skipped.
func scanMarkdown(dir string) ([]string, time.Time, error) {
	var (
		files  []string
		latest time.Time
	)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(p) != ".md" {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, latest, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
