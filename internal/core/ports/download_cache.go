package ports

import "context"

// DownloadCache keeps fetched artifacts by URL so that rebuilding a recipe
// does not go to the network again.
//
//go:generate mockgen -source=download_cache.go -destination=mocks/mock_download_cache.go -package=mocks
type DownloadCache interface {
	// Lookup returns the cached copy of url, if there is one.
	Lookup(url string) (string, bool)
	// Store adds the file at path to the cache under url.
	Store(ctx context.Context, url, path string) error
}
