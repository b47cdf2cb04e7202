package domain

import "time"

// CachedDownload records one artifact kept in the download cache.
type CachedDownload struct {
	URL     string    `json:"url"`
	SHA256  string    `json:"sha256"`
	Size    int64     `json:"size"`
	Fetched time.Time `json:"fetched"`
}
