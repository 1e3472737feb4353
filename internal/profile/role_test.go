package profile

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"manager", RoleManager, false},
		{"team", RoleTeam, false},
		{"customer", RoleCustomer, false},
		{"", "", true},
		{"Admin", "", true},
		{"superuser", "", true},
		{"team ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got role %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleTeam, RoleCustomer} {
		if !r.Valid() {
			t.Errorf("%s reported invalid", r)
		}
	}
	for _, r := range []Role{"", "root", "ADMIN"} {
		if r.Valid() {
			t.Errorf("%q reported valid", r)
		}
	}
}
