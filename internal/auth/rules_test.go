package auth

import (
	"errors"
	"testing"
)

func TestRequireAdmin(t *testing.T) {
	for _, role := range []Role{RoleGardener, RoleVolunteer, Role("")} {
		if err := RequireAdmin(Principal{ID: "u1", Role: role}); !errors.Is(err, ErrForbidden) {
			t.Errorf("role %q: expected ErrForbidden, got %v", role, err)
		}
	}
	if err := RequireAdmin(Principal{ID: "u1", Role: RoleAdmin}); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
}

func TestRequireGardenerOrAdmin(t *testing.T) {
	cases := []struct {
		role Role
		ok   bool
	}{
		{RoleAdmin, true},
		{RoleGardener, true},
		{RoleVolunteer, false},
		{Role(""), false},
	}
	for _, tc := range cases {
		err := RequireGardenerOrAdmin(Principal{ID: "u1", Role: tc.role})
		if tc.ok && err != nil {
			t.Errorf("role %q: unexpected error %v", tc.role, err)
		}
		if !tc.ok && !errors.Is(err, ErrForbidden) {
			t.Errorf("role %q: expected ErrForbidden, got %v", tc.role, err)
		}
	}
}

func TestCanMutate(t *testing.T) {
	cases := []struct {
		name string
		p    Principal
		res  ResourceOwnership
		want bool
	}{
		{
			name: "admin bypasses ownership entirely",
			p:    Principal{ID: "admin-1", Role: RoleAdmin},
			res:  ResourceOwnership{UserID: "someone-else"},
			want: true,
		},
		{
			name: "volunteer mutates own resource",
			p:    Principal{ID: "vol-1", Role: RoleVolunteer},
			res:  ResourceOwnership{UserID: "vol-1"},
			want: true,
		},
		{
			name: "volunteer cannot mutate another user's resource",
			p:    Principal{ID: "vol-1", Role: RoleVolunteer},
			res:  ResourceOwnership{UserID: "vol-2"},
			want: false,
		},
		{
			name: "gardener mutates resource in own garden",
			p:    Principal{ID: "g-1", Role: RoleGardener},
			res:  ResourceOwnership{UserID: "vol-2", GardenOwnerID: "g-1"},
			want: true,
		},
		{
			name: "gardener cannot reach resources in other gardens",
			p:    Principal{ID: "g-1", Role: RoleGardener},
			res:  ResourceOwnership{UserID: "vol-2", GardenOwnerID: "g-2"},
			want: false,
		},
		{
			name: "garden-owner shortcut does not apply to volunteers",
			p:    Principal{ID: "v-1", Role: RoleVolunteer},
			res:  ResourceOwnership{UserID: "someone", GardenOwnerID: "v-1"},
			want: false,
		},
		{
			name: "empty ownership never matches empty principal id",
			p:    Principal{ID: "", Role: RoleVolunteer},
			res:  ResourceOwnership{},
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanMutate(tc.p, tc.res); got != tc.want {
				t.Fatalf("CanMutate = %v, want %v", got, tc.want)
			}
			err := RequireMutate(tc.p, tc.res)
			if tc.want && err != nil {
				t.Fatalf("RequireMutate: %v", err)
			}
			if !tc.want && !errors.Is(err, ErrForbidden) {
				t.Fatalf("RequireMutate: expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"Admin", "Gardener", "Volunteer"} {
		if _, ok := ParseRole(raw); !ok {
			t.Errorf("ParseRole(%q) rejected", raw)
		}
	}
	for _, raw := range []string{"admin", "Superuser", "", "gardener"} {
		if _, ok := ParseRole(raw); ok {
			t.Errorf("ParseRole(%q) accepted", raw)
		}
	}
}
