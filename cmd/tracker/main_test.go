package main

import "testing"

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "10"}, "task")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 10 {
		t.Fatalf("unexpected ids %v", ids)
	}

	for _, bad := range []string{"0", "-2", "abc", ""} {
		if _, err := parseID(bad, "task"); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseDate(t *testing.T) {
	if d, err := parseDate("due", ""); err != nil || d != nil {
		t.Fatalf("expected nil date, got %v, %v", d, err)
	}
	d, err := parseDate("due", "2030-02-03")
	if err != nil || d.Day() != 3 {
		t.Fatalf("unexpected date %v, %v", d, err)
	}
	if _, err := parseDate("due", "03/02/2030"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
