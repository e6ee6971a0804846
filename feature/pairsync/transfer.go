package pairsync

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/carboneio/sclone/core/queue"
	"github.com/carboneio/sclone/core/storage"
)

// copyWorker downloads an entry from one side and uploads it to the other,
// translating metadata headers between the backends. The result is the
// number of bytes transferred.
func copyWorker(from, to storage.Adapter, fromKey, toKey func(*storage.FileEntry) string) queue.Worker[*storage.FileEntry, int64] {
	return func(ctx context.Context, e *storage.FileEntry) (int64, queue.Effects, error) {
		src := fromKey(e)
		obj, err := from.Download(ctx, src)
		if err != nil {
			return 0, queue.Effects{}, fmt.Errorf("download %s from %s: %w", src, from.Bucket(), err)
		}

		dst := toKey(e)
		headers := storage.ConvertHeaders(obj.Headers, from.Kind(), to.Kind())
		if err := to.Upload(ctx, dst, obj.Content, headers); err != nil {
			return 0, queue.Effects{}, fmt.Errorf("upload %s to %s: %w", dst, to.Bucket(), err)
		}
		return int64(len(obj.Content)), queue.Effects{}, nil
	}
}

// deleteWorker removes a chunk of entries in one bulk request. The result is
// the number of deleted objects; a partial failure returns a DeleteFailure.
func deleteWorker(side storage.Adapter, keyOf func(*storage.FileEntry) string) queue.Worker[[]*storage.FileEntry, int] {
	return func(ctx context.Context, chunk []*storage.FileEntry) (int, queue.Effects, error) {
		keys := make([]string, len(chunk))
		byKey := make(map[string]*storage.FileEntry, len(chunk))
		for i, e := range chunk {
			keys[i] = keyOf(e)
			byKey[keys[i]] = e
		}

		res, err := side.Delete(ctx, keys)
		if err != nil {
			return 0, queue.Effects{}, &DeleteFailure{Entries: chunk, Err: fmt.Errorf("delete from %s: %w", side.Bucket(), err)}
		}
		if len(res.Errors) == 0 {
			return res.Deleted, queue.Effects{}, nil
		}

		failed := make([]string, 0, len(res.Errors))
		errs := make([]error, 0, len(res.Errors))
		for k, kerr := range res.Errors {
			failed = append(failed, k)
			errs = append(errs, fmt.Errorf("%s: %w", k, kerr))
		}
		sort.Strings(failed)
		entries := make([]*storage.FileEntry, 0, len(failed))
		for _, k := range failed {
			if e, ok := byKey[k]; ok {
				entries = append(entries, e)
			}
		}
		return res.Deleted, queue.Effects{}, &DeleteFailure{Entries: entries, Deleted: res.Deleted, Err: errors.Join(errs...)}
	}
}

// chunkEntries splits entries into bulk delete requests.
func chunkEntries(entries []*storage.FileEntry) [][]*storage.FileEntry {
	var chunks [][]*storage.FileEntry
	for start := 0; start < len(entries); start += storage.MaxDeleteBatch {
		end := min(start+storage.MaxDeleteBatch, len(entries))
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}

// failedDeletes returns the entries of the final delete errors.
func failedDeletes(errs []queue.ItemError[[]*storage.FileEntry]) []*storage.FileEntry {
	var out []*storage.FileEntry
	for _, ie := range errs {
		var df *DeleteFailure
		if errors.As(ie.Err, &df) {
			out = append(out, df.Entries...)
			continue
		}
		out = append(out, ie.Item...)
	}
	return out
}
