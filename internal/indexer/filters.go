package indexer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sevigo/review-warden/internal/config"
)

// Directories that never contain reviewable source: VCS and IDE metadata,
// dependency folders, and build output.
var defaultExcludeDirs = []string{
	".git", ".github", ".idea", ".vscode",
	"vendor", "node_modules", "target", "build", "dist", "__pycache__",
}

// Extensions excluded by default: binaries, archives, media, and lockfiles.
var defaultExcludeExts = []string{
	"exe", "dll", "so", "dylib", "bin", "o", "a", "class", "pyc",
	"zip", "tar", "gz", "bz2", "7z", "rar",
	"png", "jpg", "jpeg", "gif", "bmp", "ico", "svg", "webp",
	"mp3", "mp4", "avi", "mov", "wav",
	"pdf", "woff", "woff2", "ttf", "eot",
	"lock", "sum",
}

// pathFilter decides which repository paths get indexed. It combines the
// application defaults with the repository's own exclusion lists.
type pathFilter struct {
	excludeDirs map[string]struct{}
	excludeExts map[string]struct{}
}

func newPathFilter(repoCfg *config.RepoConfig) *pathFilter {
	f := &pathFilter{
		excludeDirs: make(map[string]struct{}),
		excludeExts: make(map[string]struct{}),
	}
	for _, dir := range defaultExcludeDirs {
		f.excludeDirs[filepath.Clean(dir)] = struct{}{}
	}
	for _, ext := range defaultExcludeExts {
		f.excludeExts[ext] = struct{}{}
	}
	if repoCfg != nil {
		for _, dir := range repoCfg.ExcludeDirs {
			f.excludeDirs[filepath.Clean(dir)] = struct{}{}
		}
		for _, ext := range repoCfg.ExcludeExts {
			f.excludeExts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
		}
	}
	return f
}

// excluded reports whether a slash-separated relative path should be skipped.
// Directory exclusions match both bare names anywhere in the path and
// repo-root-relative prefixes like "docs/generated".
func (f *pathFilter) excluded(relPath string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(relPath), "."))
	if _, ok := f.excludeExts[ext]; ok {
		return true
	}
	slashPath := filepath.ToSlash(relPath)
	for _, part := range strings.Split(slashPath, "/") {
		if _, ok := f.excludeDirs[part]; ok {
			return true
		}
	}
	for dir := range f.excludeDirs {
		if strings.Contains(dir, "/") && strings.HasPrefix(slashPath, dir+"/") {
			return true
		}
	}
	return false
}

// listRepoFiles enumerates every regular file under repoPath that survives the
// filter, as sorted slash-separated paths relative to the repo root. The
// sorted order is what checkpoint-based resumption relies on.
func listRepoFiles(repoPath string, filter *pathFilter) ([]string, error) {
	var files []string
	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(repoPath, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && filter.excluded(rel+"/") {
				return filepath.SkipDir
			}
			// Directory-name exclusions apply to the dir itself.
			if _, ok := filter.excludeDirs[d.Name()]; ok && rel != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if !filter.excluded(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk repository tree: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// resumeIndex returns the position in the sorted file list where indexing
// should continue. A checkpoint present in the list resumes strictly after it;
// a checkpoint that disappeared (renamed or deleted file) resumes at the first
// lexicographically greater path; no greater path means indexing is complete.
func resumeIndex(files []string, lastIndexed string) int {
	if lastIndexed == "" {
		return 0
	}
	for i, f := range files {
		if f == lastIndexed {
			return i + 1
		}
		if f > lastIndexed {
			return i
		}
	}
	return len(files)
}

// isBinary reports whether content looks like binary data.
func isBinary(content []byte) bool {
	return bytes.IndexByte(content, 0) >= 0
}

type notebookCell struct {
	CellType string `json:"cell_type"`
	Source   any    `json:"source"`
}

type notebook struct {
	Cells []notebookCell `json:"cells"`
}

// extractNotebookCells pulls the code and markdown cell text out of a Jupyter
// notebook, dropping outputs and metadata that would pollute embeddings.
func extractNotebookCells(content []byte) (string, error) {
	var nb notebook
	if err := json.Unmarshal(content, &nb); err != nil {
		return "", fmt.Errorf("failed to parse notebook: %w", err)
	}

	var sb strings.Builder
	for _, cell := range nb.Cells {
		if cell.CellType != "code" && cell.CellType != "markdown" {
			continue
		}
		switch src := cell.Source.(type) {
		case string:
			sb.WriteString(src)
		case []any:
			for _, line := range src {
				if s, ok := line.(string); ok {
					sb.WriteString(s)
				}
			}
		}
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// readFileForIndexing loads a file and normalizes it for chunking. It returns
// an empty string for content that should be skipped entirely.
func readFileForIndexing(repoPath, relPath string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(repoPath, filepath.FromSlash(relPath)))
	if err != nil {
		return "", err
	}
	if isBinary(raw) {
		return "", nil
	}
	if strings.EqualFold(filepath.Ext(relPath), ".ipynb") {
		text, err := extractNotebookCells(raw)
		if err != nil {
			return "", err
		}
		return strings.ToValidUTF8(text, ""), nil
	}
	content := strings.ToValidUTF8(string(raw), "")
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	return content, nil
}
