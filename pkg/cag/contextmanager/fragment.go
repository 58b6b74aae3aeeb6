package contextmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/trigoo007/cagcore/pkg/fsx"
)

// fragment is one chunk of a fragmented array field, matching the wire
// shape in spec §4.7.
type fragment struct {
	Type  string          `json:"type"`
	Key   string          `json:"key"`
	Index int             `json:"index"`
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

// fragmentableFields are the array-valued keys eligible for chunking,
// evaluated against the generic map form of a ContextMap.
var fragmentableFields = []string{
	"recentMessages", "entities", "topics", "references",
	"availableDocuments", "relevantDocuments",
}

const fragmentChunkSize = 10

// fragmentPath builds the on-disk path for fragment n of field key
// belonging to context id.
func fragmentPath(fs fsx.FileSystem, dir, id, key string, index int) string {
	return fs.Join(dir, fmt.Sprintf("%s_fragment_%s_%d.json", id, key, index))
}

// splitFragments strips any array field in raw longer than
// fragmentChunkSize, chunks it, and returns the stripped base document
// plus the fragment files to write. Only fields longer than the chunk
// size are fragmented, matching spec §4.7's ">10 elements" rule.
func splitFragments(raw map[string]json.RawMessage) (map[string]json.RawMessage, []fragment, error) {
	base := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		base[k] = v
	}

	var frags []fragment
	for _, key := range fragmentableFields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err != nil {
			continue
		}
		if len(arr) <= fragmentChunkSize {
			continue
		}

		total := 0
		for start := 0; start < len(arr); start += fragmentChunkSize {
			end := start + fragmentChunkSize
			if end > len(arr) {
				end = len(arr)
			}
			chunk := arr[start:end]
			data, err := json.Marshal(chunk)
			if err != nil {
				return nil, nil, err
			}
			frags = append(frags, fragment{
				Type:  "fragment",
				Key:   key,
				Index: total,
				Data:  data,
			})
			total++
		}
		for i := range frags {
			if frags[i].Key == key {
				frags[i].Total = total
			}
		}
		delete(base, key)
	}
	return base, frags, nil
}

// reassembleFragments reads every fragment file for id's fragmented keys
// and merges the chunks back into base, sorted by index within each key.
func reassembleFragments(ctx context.Context, fs fsx.FileSystem, dir, id string, keys []string) (map[string]json.RawMessage, error) {
	base := make(map[string]json.RawMessage)
	for _, key := range keys {
		var frags []fragment
		for n := 0; ; n++ {
			path := fragmentPath(fs, dir, id, key, n)
			exists, err := fs.Exists(ctx, path)
			if err != nil {
				return nil, managerErrors.NewWithCause(ErrFragmentReadFailed, err)
			}
			if !exists {
				break
			}
			data, err := fs.ReadFile(ctx, path)
			if err != nil {
				return nil, managerErrors.NewWithCause(ErrFragmentReadFailed, err)
			}
			var f fragment
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, managerErrors.NewWithCause(ErrFragmentReadFailed, err)
			}
			frags = append(frags, f)
		}
		sort.Slice(frags, func(i, j int) bool { return frags[i].Index < frags[j].Index })

		var merged []json.RawMessage
		for _, f := range frags {
			var chunk []json.RawMessage
			if err := json.Unmarshal(f.Data, &chunk); err != nil {
				continue
			}
			merged = append(merged, chunk...)
		}
		data, err := json.Marshal(merged)
		if err != nil {
			return nil, err
		}
		base[key] = data
	}
	return base, nil
}
