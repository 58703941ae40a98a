package outbound

import "context"

// MediaStorePort is durable blob storage for produced artifacts. Put returns
// the reference under which the blob can be fetched again. Delete of a
// missing key is not an error.
type MediaStorePort interface {
	Put(ctx context.Context, key string, content []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
