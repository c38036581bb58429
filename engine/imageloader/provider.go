package imageloader

import (
	"os"
	"path/filepath"
)

// FileProvider is a DataProvider reading resources from a root directory.
type FileProvider struct {
	root string
}

// NewFileProvider creates a provider rooted at the given directory.
//
// Parameters:
//   - root: the directory resource paths are resolved against
//
// Returns:
//   - *FileProvider: the new provider
func NewFileProvider(root string) *FileProvider {
	return &FileProvider{root: root}
}

// ProvideData reads a resource file relative to the provider root.
//
// Parameters:
//   - path: the resource path
//
// Returns:
//   - []byte: the file contents
//   - error: an error if the file cannot be read
func (p *FileProvider) ProvideData(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(p.root, path))
}
