package ports

import "go.trai.ch/hob/internal/core/domain"

// Hasher computes file content digests.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFile computes every supported digest of the file in one pass.
	HashFile(path string) (domain.FileHash, error)
}
