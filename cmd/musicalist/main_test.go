package main

import (
	"reflect"
	"testing"
)

func TestRewriteOpenLocationArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"musicalist"},
			want: []string{"musicalist"},
		},
		{
			name: "link first token",
			in:   []string{"musicalist", "http://127.0.0.1:3336/musicalist/?content=abc&edit=false"},
			want: []string{"musicalist", "open", "http://127.0.0.1:3336/musicalist/?content=abc&edit=false"},
		},
		{
			name: "path after value flag",
			in:   []string{"musicalist", "--dir", "./tmp", "/musicalist/?user=alice"},
			want: []string{"musicalist", "--dir", "./tmp", "open", "/musicalist/?user=alice"},
		},
		{
			name: "bool flag before link",
			in:   []string{"musicalist", "--pretty", "https://x.test/musicalist/?edit=true"},
			want: []string{"musicalist", "--pretty", "open", "https://x.test/musicalist/?edit=true"},
		},
		{
			name: "subcommand untouched",
			in:   []string{"musicalist", "show"},
			want: []string{"musicalist", "show"},
		},
		{
			name: "dir value that looks like a path is skipped",
			in:   []string{"musicalist", "--dir", "/tmp/x?y", "show"},
			want: []string{"musicalist", "--dir", "/tmp/x?y", "show"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rewriteOpenLocationArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}
