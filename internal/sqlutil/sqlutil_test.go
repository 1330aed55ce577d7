package sqlutil

import (
	"reflect"
	"testing"
)

type kind string

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		items    []kind
		wantSQL  string
		wantArgs []any
	}{
		{nil, "NULL", nil},
		{[]kind{"idea"}, "?", []any{"idea"}},
		{[]kind{"project", "idea", "experiment"}, "?, ?, ?", []any{"project", "idea", "experiment"}},
	}
	for _, tt := range tests {
		sql, args := Placeholders(tt.items)
		if sql != tt.wantSQL || !reflect.DeepEqual(args, tt.wantArgs) {
			t.Errorf("Placeholders(%v) = %q, %v", tt.items, sql, args)
		}
	}
}
