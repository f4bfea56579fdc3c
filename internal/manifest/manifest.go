package manifest

// Store defines the manifest operations used by the build and the API.
// Consumers should depend on this interface rather than the concrete *DB type.
type Store interface {
	UpsertPage(p PageRow, body string) error
	DeletePage(sourcePath string) error
	GetPage(sourcePath string) (*PageRow, error)
	AllChecksums() (map[string]string, error)
	ListPages(limit, offset int, processor string) ([]PageRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
