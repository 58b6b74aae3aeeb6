package contextmanager

import "testing"

func TestMergeContexts_ObjectsMergeKeyByKey(t *testing.T) {
	target := map[string]interface{}{"a": 1.0, "b": 2.0}
	source := map[string]interface{}{"b": 3.0, "c": 4.0}
	merged := mergeContexts(target, source, MergeSmart).(map[string]interface{})
	if merged["a"] != 1.0 || merged["c"] != 4.0 {
		t.Fatalf("expected untouched keys preserved, got %+v", merged)
	}
	if merged["b"] != 3.0 {
		t.Fatalf("expected smart scalar merge to favor source, got %+v", merged["b"])
	}
}

func TestMergeContexts_KeepFavorsTarget(t *testing.T) {
	merged := mergeContexts("old", "new", MergeKeep)
	if merged != "old" {
		t.Fatalf("expected keep to favor target, got %v", merged)
	}
}

func TestMergeContexts_ReplaceFavorsSource(t *testing.T) {
	merged := mergeContexts("old", "new", MergeReplace)
	if merged != "new" {
		t.Fatalf("expected replace to favor source, got %v", merged)
	}
}

func TestMergeContexts_DefaultsToSmartWhenEmpty(t *testing.T) {
	target := []interface{}{"a"}
	source := []interface{}{"b"}
	merged := mergeContexts(target, source, "").([]interface{})
	if len(merged) != 2 {
		t.Fatalf("expected smart dedup-append default, got %+v", merged)
	}
}

func TestMergeContexts_ArrayReplace(t *testing.T) {
	target := []interface{}{"a", "b"}
	source := []interface{}{"c"}
	merged := mergeContexts(target, source, MergeReplace).([]interface{})
	if len(merged) != 1 || merged[0] != "c" {
		t.Fatalf("expected replace to discard target array, got %+v", merged)
	}
}

func TestMergeContexts_ArrayKeep(t *testing.T) {
	target := []interface{}{"a", "b"}
	source := []interface{}{"c"}
	merged := mergeContexts(target, source, MergeKeep).([]interface{})
	if len(merged) != 2 {
		t.Fatalf("expected keep to discard source array, got %+v", merged)
	}
}

func TestDedupAppend_RemovesDuplicatesByCanonicalForm(t *testing.T) {
	target := []interface{}{"a", "b"}
	source := []interface{}{"b", "c"}
	out := dedupAppend(target, source)
	if len(out) != 3 {
		t.Fatalf("expected 3 deduped entries, got %+v", out)
	}
}

func TestMergeContexts_NestedObjectMerge(t *testing.T) {
	target := map[string]interface{}{
		"nested": map[string]interface{}{"x": 1.0},
	}
	source := map[string]interface{}{
		"nested": map[string]interface{}{"y": 2.0},
	}
	merged := mergeContexts(target, source, MergeSmart).(map[string]interface{})
	nested := merged["nested"].(map[string]interface{})
	if nested["x"] != 1.0 || nested["y"] != 2.0 {
		t.Fatalf("expected deep merge of nested objects, got %+v", nested)
	}
}
