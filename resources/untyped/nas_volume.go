package untyped

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/verge-io/go-verge-client/core"
)

type NASVolume struct {
	*core.VergeResource
}

// VolumeBrowse holds the server-side directory-browse requests spawned by
// NASVolume.Browse. Rows move pending -> complete/error and carry the listing
// in their result field.
type VolumeBrowse struct {
	*core.VergeResource
}

// BrowseWithContext lists a directory inside the volume. The listing is
// produced asynchronously on the server: a browse request row is created,
// then polled on a fixed budget of 30 attempts spaced 500ms apart.
//
// A completed browse with a null or absent result is an empty directory and
// returns an empty RecordSet, not an error.
func (v *NASVolume) BrowseWithContext(ctx context.Context, volumeId any, dirPath string, progress core.ProgressFunc) (core.RecordSet, error) {
	browses := v.Rest.GetResourceMap()["VolumeBrowse"].(*VolumeBrowse)
	request, err := browses.CreateWithContext(ctx, core.Params{
		"volume": volumeId,
		"path":   dirPath,
	})
	if err != nil {
		return nil, err
	}
	if !request.HasKey() {
		return nil, fmt.Errorf("browse request for volume %v was not assigned a key", volumeId)
	}

	handle := core.JobHandle{
		ID:          request.RecordKey(),
		Kind:        core.JobKindBrowse,
		DisplayName: fmt.Sprintf("browse %v:%s", volumeId, dirPath),
	}
	snapshot, err := core.WaitForBrowse(ctx, handle, func(ctx context.Context, id any) (core.Record, error) {
		return browses.GetByIdWithContext(ctx, id)
	}, progress)
	if err != nil {
		return nil, err
	}
	return parseBrowseListing(snapshot)
}

// Browse lists a directory inside the volume using the bound REST context.
func (v *NASVolume) Browse(volumeId any, dirPath string) (core.RecordSet, error) {
	return v.BrowseWithContext(v.Rest.GetCtx(), volumeId, dirPath, nil)
}

// parseBrowseListing extracts the directory entries from a completed browse
// row. The result arrives either as a JSON-encoded string or as a decoded
// list, and null means an empty directory.
func parseBrowseListing(snapshot core.Record) (core.RecordSet, error) {
	raw, ok := snapshot["result"]
	if !ok || raw == nil {
		return core.RecordSet{}, nil
	}
	switch typed := raw.(type) {
	case string:
		if typed == "" {
			return core.RecordSet{}, nil
		}
		var entries []map[string]any
		if err := json.Unmarshal([]byte(typed), &entries); err != nil {
			return nil, fmt.Errorf("unexpected browse result payload: %w", err)
		}
		listing := make(core.RecordSet, len(entries))
		for i, entry := range entries {
			listing[i] = core.ToRecord(entry)
		}
		return listing, nil
	case []any:
		listing := make(core.RecordSet, 0, len(typed))
		for _, entry := range typed {
			if m, ok := entry.(map[string]any); ok {
				listing = append(listing, core.ToRecord(m))
			} else {
				listing = append(listing, core.Record{"name": fmt.Sprintf("%v", entry)})
			}
		}
		return listing, nil
	default:
		return nil, fmt.Errorf("unexpected browse result type %T", raw)
	}
}
