package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Per-document artifact suffixes. The three files form one logical unit and
// are only ever written or removed together.
const (
	indexSuffix  = ".index"
	chunksSuffix = ".chunks.txt"
	pagesSuffix  = ".pages.txt"

	chunkDelimiter = "---CHUNK---"
)

// ArtifactStore persists one flat index plus its chunk-text and chunk-page
// arrays per document, keyed by document name, under a single directory.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Save writes the three artifacts for docName. Each file goes through a
// temp-file plus rename so a query racing a build either sees the previous
// complete state or fails closed with ErrDocumentNotIndexed, never a torn
// artifact. idx may be nil when the document produced zero chunks; an empty
// index file is written so the document still counts as ingested.
func (s *ArtifactStore) Save(docName string, idx *Flat, chunks []string, chunkPages []int) error {
	if len(chunks) != len(chunkPages) {
		return fmt.Errorf("chunks/pages length mismatch: %d vs %d", len(chunks), len(chunkPages))
	}

	if idx == nil {
		idx = &Flat{}
	}

	if err := s.writeAtomic(docName+indexSuffix, func(f *os.File) error {
		return idx.WriteTo(f)
	}); err != nil {
		return err
	}

	if err := s.writeAtomic(docName+chunksSuffix, func(f *os.File) error {
		for _, chunk := range chunks {
			if _, err := fmt.Fprintf(f, "%s\n%s\n", chunk, chunkDelimiter); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return s.writeAtomic(docName+pagesSuffix, func(f *os.File) error {
		for _, page := range chunkPages {
			if _, err := fmt.Fprintf(f, "%d\n", page); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads the three artifacts back. Any of them missing or unreadable
// yields ErrDocumentNotIndexed: a partially written or half-deleted document
// is treated the same as one never ingested.
func (s *ArtifactStore) Load(docName string) (*Flat, []string, []int, error) {
	f, err := os.Open(filepath.Join(s.dir, docName+indexSuffix))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrDocumentNotIndexed, docName)
	}
	defer f.Close()

	idx, err := ReadFrom(f)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s: %v", ErrDocumentNotIndexed, docName, err)
	}

	rawChunks, err := os.ReadFile(filepath.Join(s.dir, docName+chunksSuffix))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrDocumentNotIndexed, docName)
	}
	chunks := splitChunks(string(rawChunks))

	rawPages, err := os.ReadFile(filepath.Join(s.dir, docName+pagesSuffix))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrDocumentNotIndexed, docName)
	}
	pages, err := parsePages(string(rawPages))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s: %v", ErrDocumentNotIndexed, docName, err)
	}

	return idx, chunks, pages, nil
}

// Delete removes the artifacts of docName. Already-absent files are fine, so
// deleting twice in a row is a no-op the second time.
func (s *ArtifactStore) Delete(docName string) error {
	for _, suffix := range []string{indexSuffix, chunksSuffix, pagesSuffix} {
		path := filepath.Join(s.dir, docName+suffix)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", path, err)
		}
	}
	return nil
}

// List returns the names of documents with a complete artifact set, sorted.
func (s *ArtifactStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), indexSuffix) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), indexSuffix)
		if s.exists(name+chunksSuffix) && s.exists(name+pagesSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *ArtifactStore) exists(file string) bool {
	_, err := os.Stat(filepath.Join(s.dir, file))
	return err == nil
}

func (s *ArtifactStore) writeAtomic(file string, write func(*os.File) error) error {
	final := filepath.Join(s.dir, file)
	tmp, err := os.CreateTemp(s.dir, file+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), final)
}

func splitChunks(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n"+chunkDelimiter+"\n")
	// the file ends with a trailing delimiter, drop the empty tail
	if n := len(parts); n > 0 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	return parts
}

func parsePages(raw string) ([]int, error) {
	var pages []int
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		page, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("bad page line %q", line)
		}
		pages = append(pages, page)
	}
	return pages, nil
}
