package flatten

import (
	"errors"
	"testing"
)

func TestFlattenScalarRoot(t *testing.T) {
	got, err := Flatten("hello", "clusters/u/p/v/1/status")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := map[string]string{"clusters/u/p/v/1/status": "hello"}
	if !eq(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFlattenSequenceOfScalars(t *testing.T) {
	got, err := Flatten([]any{"web", "db"}, "clusters/u/p/v/1/tags")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := map[string]string{
		"clusters/u/p/v/1/tags/web": "",
		"clusters/u/p/v/1/tags/db":  "",
	}
	if !eq(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFlattenNestedMapping(t *testing.T) {
	doc := map[string]any{
		"instance_name": "hadoop-1",
		"nodes": map[string]any{
			"n1": map[string]any{
				"name": "n1",
				"cpu":  float64(4),
			},
		},
	}
	got, err := Flatten(doc, "clusters/u/p/v/1")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	want := map[string]string{
		"clusters/u/p/v/1/instance_name":      "hadoop-1",
		"clusters/u/p/v/1/nodes/n1/name":      "n1",
		"clusters/u/p/v/1/nodes/n1/cpu":       "4",
	}
	if !eq(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFlattenNestedListsRejected(t *testing.T) {
	doc := map[string]any{
		"bad": []any{[]any{"a", "b"}},
	}
	_, err := Flatten(doc, "prefix")
	if !errors.Is(err, ErrNestedListsNotSupported) {
		t.Fatalf("err = %v, want ErrNestedListsNotSupported", err)
	}
}

func TestFlattenUnsupportedTypeRejected(t *testing.T) {
	doc := map[string]any{
		"bad": struct{ X int }{X: 1},
	}
	_, err := Flatten(doc, "prefix")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestFlattenUnsupportedRootRejected(t *testing.T) {
	_, err := Flatten(struct{}{}, "prefix")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func eq(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
