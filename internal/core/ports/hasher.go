package ports

// Hasher computes content digests.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeDigest returns the digest of data.
	ComputeDigest(data []byte) string
	// ComputeFileDigest returns the digest of the file at path.
	ComputeFileDigest(path string) (string, error)
}
