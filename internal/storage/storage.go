// internal/storage/storage.go
package storage

import "context"

// ObjectStorage archives generated report files to an object store.
type ObjectStorage interface {
	Upload(ctx context.Context, localPath, objectName string) error
}
