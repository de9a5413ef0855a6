package port

// DocumentSource resolves CLI arguments to readable documents.
type DocumentSource interface {
	Resolve(patterns []string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
