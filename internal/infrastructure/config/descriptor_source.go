package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/values"
	"golang.org/x/sync/errgroup"
)

// DescriptorFileNames are the file names recognized inside a version directory, in priority order.
var DescriptorFileNames = []string{"package.yaml", "package.yml", "package.json"}

// DirectorySource reads package trees laid out as <root>/<name>/<version>/package.yaml.
//
// Files are read concurrently but returned in (root, name, version directory) order,
// so loading is deterministic. Roots that do not exist are skipped.
type DirectorySource struct {
	logger      *slog.Logger
	roots       []string
	concurrency int
}

// NewDirectorySource creates a source over roots. concurrency <= 0 uses GOMAXPROCS.
func NewDirectorySource(roots []string, concurrency int, logger *slog.Logger) *DirectorySource {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectorySource{roots: roots, concurrency: concurrency, logger: logger}
}

// descriptorFile is one discovered descriptor and the directory names it sits under.
type descriptorFile struct {
	path    string
	dir     string
	name    string
	version string
}

// Read implements ports.DescriptorSource.
func (s *DirectorySource) Read(ctx context.Context) ([]ports.RawDescriptor, error) {
	var files []descriptorFile
	for _, root := range s.roots {
		found, err := s.discover(root)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	results := make([][]ports.RawDescriptor, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, f := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = s.readOne(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var docs []ports.RawDescriptor
	for _, r := range results {
		docs = append(docs, r...)
	}
	s.logger.Debug("read package tree", "roots", len(s.roots), "files", len(files), "documents", len(docs))
	return docs, nil
}

// discover lists descriptor files under root in sorted order.
func (s *DirectorySource) discover(root string) ([]descriptorFile, error) {
	names, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("skipping missing package root", "path", root)
			return nil, nil
		}
		return nil, fmt.Errorf("reading package root %s: %w", root, err)
	}

	var files []descriptorFile
	for _, nameEntry := range names {
		if !nameEntry.IsDir() || isHidden(nameEntry.Name()) {
			continue
		}
		nameDir := filepath.Join(root, nameEntry.Name())

		versions, err := os.ReadDir(nameDir)
		if err != nil {
			return nil, fmt.Errorf("reading package directory %s: %w", nameDir, err)
		}
		for _, versionEntry := range versions {
			if !versionEntry.IsDir() || isHidden(versionEntry.Name()) {
				continue
			}
			versionDir := filepath.Join(nameDir, versionEntry.Name())
			if path, ok := findDescriptor(versionDir); ok {
				files = append(files, descriptorFile{
					path:    path,
					dir:     versionDir,
					name:    nameEntry.Name(),
					version: versionEntry.Name(),
				})
			}
		}
	}

	// os.ReadDir already sorts by file name; keep the guarantee explicit.
	sort.SliceStable(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}

func (s *DirectorySource) readOne(f descriptorFile) []ports.RawDescriptor {
	data, err := readFile(f.path)
	if err != nil {
		return []ports.RawDescriptor{{Source: f.path, Root: f.dir, Err: err}}
	}

	docs := ParseDocuments(f.path, f.dir, data)
	if len(docs) != 1 {
		return []ports.RawDescriptor{{
			Source: f.path,
			Root:   f.dir,
			Err: &entities.MalformedDescriptorError{
				Source: f.path,
				Field:  "document",
				Reason: fmt.Sprintf("expected exactly one document, found %d", len(docs)),
			},
		}}
	}

	doc := docs[0]
	if doc.Err == nil {
		doc.Err = checkLocation(f, doc.JSON)
	}
	return []ports.RawDescriptor{doc}
}

// checkLocation verifies that a descriptor's name and version match its directories.
func checkLocation(f descriptorFile, data []byte) error {
	var head struct {
		Name    any `json:"name"`
		Version any `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil // left to schema validation
	}

	if name, ok := head.Name.(string); ok && name != f.name {
		return &entities.MalformedDescriptorError{
			Source: f.path,
			Field:  "name",
			Reason: fmt.Sprintf("%q does not match directory %q", name, f.name),
		}
	}

	text, ok := head.Version.(string)
	if !ok {
		return nil
	}
	declared, err := values.ParseVersion(text)
	if err != nil {
		return nil
	}
	dirVersion, err := values.ParseVersion(f.version)
	if err != nil || !declared.Equals(dirVersion) {
		return &entities.MalformedDescriptorError{
			Source: f.path,
			Field:  "version",
			Reason: fmt.Sprintf("%q does not match directory %q", text, f.version),
		}
	}
	return nil
}

func findDescriptor(dir string) (string, bool) {
	for _, name := range DescriptorFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// FileSource reads one descriptor file that may hold several YAML documents.
// The file's directory is used as the package root.
type FileSource struct {
	path string
}

// NewFileSource creates a source for a single file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Read implements ports.DescriptorSource.
func (s *FileSource) Read(_ context.Context) ([]ports.RawDescriptor, error) {
	data, err := readFile(s.path)
	if err != nil {
		return nil, err
	}
	return ParseDocuments(s.path, filepath.Dir(s.path), data), nil
}

// ReaderSource reads a YAML stream of descriptors, for example from stdin.
// Packages read this way have no root directory.
type ReaderSource struct {
	r    io.Reader
	name string
}

// NewReaderSource creates a source over r; name is used in error messages.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{name: name, r: r}
}

// Read implements ports.DescriptorSource.
func (s *ReaderSource) Read(_ context.Context) ([]ports.RawDescriptor, error) {
	data, err := readLimited(s.r, s.name)
	if err != nil {
		return nil, err
	}
	return ParseDocuments(s.name, "", data), nil
}
