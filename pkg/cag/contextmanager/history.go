package contextmanager

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/fsx"
	"github.com/trigoo007/cagcore/pkg/kernel"
)

func historyPath(fs fsx.FileSystem, dir, id, versionID string) string {
	return fs.Join(dir, id+"_"+versionID+".json")
}

// writeHistory persists cm as an immutable version file. Called from
// every updateContextMap unless the caller opts out.
func writeHistory(ctx context.Context, fs fsx.FileSystem, dir string, cm *types.ContextMap) error {
	data, err := json.Marshal(cm)
	if err != nil {
		return managerErrors.NewWithCause(ErrPersistFailed, err)
	}
	path := historyPath(fs, dir, cm.ConversationID.String(), cm.VersionID.String())
	if err := fs.WriteFile(ctx, path, data); err != nil {
		return managerErrors.NewWithCause(ErrPersistFailed, err)
	}
	return nil
}

// listVersions enumerates the history files for a conversation, newest
// first, per spec §4.7's getContextVersions.
func listVersions(ctx context.Context, fs fsx.FileSystem, dir, id string) ([]kernel.VersionID, error) {
	infos, err := fs.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	type entry struct {
		versionID string
		modTime   int64
	}
	prefix := id + "_"
	var entries []entry
	for _, info := range infos {
		if info.IsDir || !strings.HasPrefix(info.Name, prefix) || !strings.HasSuffix(info.Name, ".json") {
			continue
		}
		versionID := strings.TrimSuffix(strings.TrimPrefix(info.Name, prefix), ".json")
		entries = append(entries, entry{versionID: versionID, modTime: info.ModTime.UnixNano()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].modTime > entries[j].modTime })

	out := make([]kernel.VersionID, 0, len(entries))
	for _, e := range entries {
		out = append(out, kernel.NewVersionID(e.versionID))
	}
	return out, nil
}

// readVersion loads a single named version of a conversation's history.
func readVersion(ctx context.Context, fs fsx.FileSystem, dir, id, versionID string) (*types.ContextMap, error) {
	path := historyPath(fs, dir, id, versionID)
	exists, err := fs.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, managerErrors.New(ErrVersionNotFound)
	}
	data, err := fs.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	var cm types.ContextMap
	if err := json.Unmarshal(data, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}
