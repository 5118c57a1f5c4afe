package kernel

import (
	"context"
	"fmt"
)

// SyncResult reports what happened to one catalog entry during a sync.
type SyncResult struct {
	Key     string
	File    string
	Path    string
	Updated bool
}

// Sync refreshes every catalog entry from the archive: entries with a latest
// pattern are re-pointed at the newest archive edition first, then each file
// is fetched. With force set, files already on disk are re-downloaded.
func Sync(ctx context.Context, cat *Catalog, arc *Archive, force bool) ([]SyncResult, error) {
	var out []SyncResult
	for _, key := range cat.Keys() {
		entry, err := cat.Resolve(key)
		if err != nil {
			return out, err
		}

		updated := false
		if entry.LatestPattern != nil {
			latest, err := arc.LatestFilename(ctx, entry)
			if err != nil {
				return out, fmt.Errorf("sync %s: %w", key, err)
			}
			if latest != entry.File {
				if err := cat.SetFile(key, latest); err != nil {
					return out, err
				}
				entry.File = latest
				updated = true
			}
		}

		path, err := arc.Fetch(ctx, entry, force || updated)
		if err != nil {
			return out, fmt.Errorf("sync %s: %w", key, err)
		}
		out = append(out, SyncResult{Key: key, File: entry.File, Path: path, Updated: updated})
	}
	return out, nil
}
