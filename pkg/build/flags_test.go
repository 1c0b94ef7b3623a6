// SPDX-License-Identifier: MIT
package build

import (
	"strings"
	"testing"
)

// withLinkerVars sets the ldflags variables and restores them, along with
// buildFlags, when t finishes.
func withLinkerVars(t *testing.T, name, at, commit, version string) {
	t.Helper()
	saved := *buildFlags
	savedName, savedTime, savedCommit, savedVersion := buildName, buildTime, buildCommit, buildVersion
	t.Cleanup(func() {
		*buildFlags = saved
		buildName, buildTime, buildCommit, buildVersion = savedName, savedTime, savedCommit, savedVersion
	})
	buildName, buildTime, buildCommit, buildVersion = name, at, commit, version
}

func TestInitializeRequiresEveryFlag(t *testing.T) {
	tests := []struct {
		name                     string
		app, at, commit, version string
		wantErr                  string
	}{
		{"missing name", "", "2026-01-02", "abc123", "v1.0.0", "BuildName is required"},
		{"missing time", "earshot", "", "abc123", "v1.0.0", "BuildTime is required"},
		{"missing commit", "earshot", "2026-01-02", "", "v1.0.0", "BuildCommit is required"},
		{"missing version", "earshot", "2026-01-02", "abc123", "", "BuildVersion is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withLinkerVars(t, tt.app, tt.at, tt.commit, tt.version)

			err := Initialize()
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("Initialize() error = %v, want %q", err, tt.wantErr)
			}
			if got := GetBuildFlags().Version; got != "dev" {
				t.Errorf("a failed Initialize changed Version to %q", got)
			}
		})
	}
}

func TestInitializeCopiesLinkerVars(t *testing.T) {
	withLinkerVars(t, "earshot", "2026-01-02T10:00:00Z", "abc123", "v1.2.0")

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	f := GetBuildFlags()
	if f.Name != "earshot" || f.Commit != "abc123" || f.Version != "v1.2.0" {
		t.Errorf("unexpected flags: %+v", *f)
	}
	if want := "earshot v1.2.0 (commit abc123, built 2026-01-02T10:00:00Z)"; f.String() != want {
		t.Errorf("String() = %q, want %q", f.String(), want)
	}
}

func TestDevDefaults(t *testing.T) {
	withLinkerVars(t, "", "", "", "")

	_ = Initialize()
	f := GetBuildFlags()
	if got := f.String(); got != "earshot dev (commit unknown, built unknown)" {
		t.Errorf("String() = %q", got)
	}
	if !strings.Contains(f.Description, "phonetic") {
		t.Errorf("Description = %q", f.Description)
	}
}

func TestGetBuildFlagsIsShared(t *testing.T) {
	if GetBuildFlags() != GetBuildFlags() {
		t.Error("GetBuildFlags should return the same instance")
	}
}
