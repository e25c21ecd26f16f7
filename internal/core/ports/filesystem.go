package ports

// FileSystem abstracts the file operations used on manifests and install trees.
//
//go:generate go run go.uber.org/mock/mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// ReadFile returns the content of path.
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces path with data atomically.
	WriteFile(path string, data []byte) error
	// Remove deletes a single file.
	Remove(path string) error
	// RemoveAll deletes path and everything below it. A missing path is not an error.
	RemoveAll(path string) error
	// Exists reports whether path exists.
	Exists(path string) (bool, error)
}
