package rbac

import "testing"

func TestCheckerDefaultMatrix(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role string
		perm string
		want bool
	}{
		{"student", "catalog:view", true},
		{"student", "attempt:submit", true},
		{"student", "attempt:view-own", true},
		{"student", "attempt:view-all", false},
		{"student", "catalog:manage", false},
		{"student", "users:bulk_upsert", false},
		{"admin", "catalog:manage", true},
		{"admin", "events:view", true},
		{"admin", "anything:at-all", true},
		{"", "catalog:view", false},
		{"unknown", "catalog:view", false},
	}
	for _, tc := range tests {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}

	if !c.Any("student", "attempt:view-own", "attempt:view-all") {
		t.Errorf("Any must pass when one of the permissions is granted")
	}
	if c.Any("student", "catalog:manage", "question:manage") {
		t.Errorf("Any must fail when none of the permissions are granted")
	}
}

func TestCheckerPrefixWildcard(t *testing.T) {
	c := NewChecker(map[string][]string{
		"grader": {"attempt:*"},
	})
	if !c.Has("grader", "attempt:view-all") {
		t.Errorf("attempt:* must cover attempt:view-all")
	}
	if c.Has("grader", "catalog:view") {
		t.Errorf("attempt:* must not cover catalog:view")
	}
}
