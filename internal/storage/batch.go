package storage

import (
	"context"
	"sync"
)

// BatchDownloader fetches partition objects in parallel with bounded
// concurrency. Download order is not preserved; callers that need a
// deterministic processing order iterate their own path list over the
// result.
type BatchDownloader struct {
	storage     ObjectStorage
	concurrency int
}

// BatchResult holds the buffers and per-object failures of one batch.
type BatchResult struct {
	Buffers map[string][]byte
	Errors  map[string]error
}

// NewBatchDownloader creates a downloader running at most concurrency
// downloads at once.
func NewBatchDownloader(storage ObjectStorage, concurrency int) *BatchDownloader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchDownloader{storage: storage, concurrency: concurrency}
}

// Download fetches every object in objectPaths. Failures are recorded
// per object rather than aborting the batch.
func (b *BatchDownloader) Download(ctx context.Context, objectPaths []string) *BatchResult {
	result := &BatchResult{
		Buffers: make(map[string][]byte, len(objectPaths)),
		Errors:  make(map[string]error),
	}
	if len(objectPaths) == 0 {
		return result
	}

	type fetched struct {
		path string
		data []byte
		err  error
	}
	results := make([]fetched, len(objectPaths))
	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for i, path := range objectPaths {
		wg.Add(1)
		go func(idx int, objectPath string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = fetched{path: objectPath, err: ctx.Err()}
				return
			}

			data, err := b.storage.Download(ctx, objectPath)
			results[idx] = fetched{path: objectPath, data: data, err: err}
		}(i, path)
	}

	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			result.Errors[r.path] = r.err
			continue
		}
		result.Buffers[r.path] = r.data
	}
	return result
}
