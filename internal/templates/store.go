// Package templates loads the site configuration templates from disk.
package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"dsstool/internal/dss"
)

// ErrNoTemplates is returned when a directory holds none of the known
// template files.
var ErrNoTemplates = errors.New("no templates found")

// Info describes one template file.
type Info struct {
	Name    string `json:"name"`
	Sectors int    `json:"sectors"`
	Size    int    `json:"size"`
}

// Store reads templates from a directory.
type Store struct {
	fsys   fs.FS
	dir    string
	logger *slog.Logger
}

// NewStore returns a store reading from dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return NewStoreFS(os.DirFS(dir), dir, logger)
}

// NewStoreFS returns a store reading from fsys. dir is used in messages.
func NewStoreFS(fsys fs.FS, dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fsys: fsys, dir: dir, logger: logger.With(slog.String("component", "templates"))}
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string { return s.dir }

// Load returns the templates the variant can select: both the four- and
// three-sector template for dss.VariantDual, only single for
// dss.VariantSingle. Missing dual templates are logged and left out so the
// renderer reports the group that needed them.
func (s *Store) Load(variant dss.Variant, single string) (dss.TemplateSet, error) {
	names := []string{dss.FourSectorTemplate, dss.ThreeSectorTemplate}
	if variant == dss.VariantSingle {
		if single == "" {
			single = dss.FourSectorTemplate
		}
		names = []string{single}
	}

	set := make(dss.TemplateSet, len(names))
	for _, name := range names {
		body, err := fs.ReadFile(s.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("template file not found",
				slog.String("template", name),
				slog.String("dir", s.dir))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", filepath.Join(s.dir, name), err)
		}
		set[name] = string(body)
		s.logger.Debug("template loaded", slog.String("template", name), slog.Int("bytes", len(body)))
	}

	if len(set) == 0 {
		if variant == dss.VariantSingle {
			return nil, &dss.NotFoundError{Kind: "template", Name: single, Available: s.names(), Err: ErrNoTemplates}
		}
		return nil, fmt.Errorf("%w in %s for variant %s", ErrNoTemplates, s.dir, variant)
	}
	return set, nil
}

// names lists the template files present, or nil when the directory cannot
// be read.
func (s *Store) names() []string {
	list, err := s.List()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.Name)
	}
	return out
}

// List describes the known template files present in the directory.
func (s *Store) List() ([]Info, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates in %s: %w", s.dir, err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, Info{Name: e.Name(), Sectors: sectors(e.Name()), Size: int(fi.Size())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func sectors(name string) int {
	switch name {
	case dss.FourSectorTemplate:
		return 4
	case dss.ThreeSectorTemplate:
		return 3
	}
	return 0
}
