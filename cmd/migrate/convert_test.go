package main

import (
	"database/sql"
	"testing"
)

func TestParseIDs(t *testing.T) {
	cases := []struct {
		in   string
		want []int64
		err  bool
	}{
		{`[1, 2, 3]`, []int64{1, 2, 3}, false},
		{`["4", 5]`, []int64{4, 5}, false},
		{`null`, []int64{}, false},
		{``, []int64{}, false},
		{`["x"]`, nil, true},
		{`{"a":1}`, nil, true},
	}
	for _, tc := range cases {
		got, err := parseIDs([]byte(tc.in))
		if (err != nil) != tc.err {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if tc.err {
			continue
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%q: expected %v, got %v", tc.in, tc.want, got)
			}
		}
	}
}

func TestParseStrings(t *testing.T) {
	got, err := parseStrings([]byte(`["padel","tennis"]`))
	if err != nil || len(got) != 2 || got[1] != "tennis" {
		t.Fatalf("unexpected result %v %v", got, err)
	}
	got, err = parseStrings(nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %v %v", got, err)
	}
}

func TestNullStr(t *testing.T) {
	if nullStr(sql.NullString{}) != nil {
		t.Fatal("expected nil for NULL")
	}
	if got := nullStr(sql.NullString{String: "x", Valid: true}); got == nil || *got != "x" {
		t.Fatalf("unexpected %v", got)
	}
}
