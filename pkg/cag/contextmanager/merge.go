package contextmanager

import "encoding/json"

// MergeStrategy controls how mergeContexts resolves conflicts between a
// target and a source document, per spec §4.7.
type MergeStrategy string

const (
	MergeAppend  MergeStrategy = "append"
	MergeReplace MergeStrategy = "replace"
	MergeKeep    MergeStrategy = "keep"
	MergeSmart   MergeStrategy = "smart"
)

// mergeContexts recursively merges source into target as generic JSON
// trees. Objects merge key-by-key; arrays under "smart" are deduplicated
// by their JSON-canonical form with new items appended; scalars follow
// the strategy directly ("keep" favors target, "replace" favors source,
// "append" behaves like smart for arrays and like replace for scalars).
func mergeContexts(target, source interface{}, strategy MergeStrategy) interface{} {
	if strategy == "" {
		strategy = MergeSmart
	}

	tMap, tIsMap := target.(map[string]interface{})
	sMap, sIsMap := source.(map[string]interface{})
	if tIsMap && sIsMap {
		out := make(map[string]interface{}, len(tMap)+len(sMap))
		for k, v := range tMap {
			out[k] = v
		}
		for k, sv := range sMap {
			if tv, ok := out[k]; ok {
				out[k] = mergeContexts(tv, sv, strategy)
			} else {
				out[k] = sv
			}
		}
		return out
	}

	tArr, tIsArr := target.([]interface{})
	sArr, sIsArr := source.([]interface{})
	if tIsArr && sIsArr {
		switch strategy {
		case MergeReplace:
			return sArr
		case MergeKeep:
			return tArr
		default: // append, smart
			return dedupAppend(tArr, sArr)
		}
	}

	switch strategy {
	case MergeKeep:
		return target
	default:
		return source
	}
}

func dedupAppend(target, source []interface{}) []interface{} {
	seen := make(map[string]bool, len(target))
	out := make([]interface{}, 0, len(target)+len(source))
	for _, v := range target {
		canon, err := json.Marshal(v)
		if err != nil {
			out = append(out, v)
			continue
		}
		key := string(canon)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	for _, v := range source {
		canon, err := json.Marshal(v)
		if err != nil {
			out = append(out, v)
			continue
		}
		key := string(canon)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}
