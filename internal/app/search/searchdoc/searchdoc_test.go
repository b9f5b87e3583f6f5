package searchdoc_test

import (
	"encoding/json"
	"testing"

	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
)

func TestNewBundle_EncodesEmptyList(t *testing.T) {
	b := searchdoc.NewBundle[string]()

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got, want := string(data), `{"items":[],"count":0}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestBundle_AddKeepsCountInStep(t *testing.T) {
	b := searchdoc.NewBundle[string]()
	for i, v := range []string{"a", "b", "c"} {
		b.Add(v)
		if b.Count != i+1 || len(b.Items) != b.Count {
			t.Fatalf("after %d adds: Count=%d len(Items)=%d", i+1, b.Count, len(b.Items))
		}
	}
}

func TestJoinFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{"none", nil, ""},
		{"one", []string{"CS101"}, "CS101"},
		{"empty middle", []string{"CS101", "", "Amy"}, "CS101,,Amy"},
		{"delimiter not escaped", []string{"Lee, Amy", "x"}, "Lee, Amy,x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchdoc.JoinFields(tt.fields...); got != tt.want {
				t.Errorf("JoinFields(%q) = %q, want %q", tt.fields, got, tt.want)
			}
		})
	}
}
