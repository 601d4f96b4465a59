// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/bureau-foundation/spread/lib/schema/release"
)

var resolveApps = []release.App{
	{ID: "a1", Name: "shop-ios", OS: release.OSiOS},
	{ID: "a2", Name: "shop-android", OS: release.OSAndroid},
	{ID: "a3", Name: "workshop", OS: release.OSiOS},
}

func TestResolveApp(t *testing.T) {
	tests := []struct {
		query  string
		wantID string
	}{
		{"a2", "a2"},
		{"SHOP-IOS", "a1"},
		{"andr", "a2"},
		{"ios", "a1"},
		{"shpand", "a2"},
		{"  workshop  ", "a3"},
	}
	for _, test := range tests {
		app, err := ResolveApp(resolveApps, test.query)
		if err != nil {
			t.Errorf("ResolveApp(%q): %v", test.query, err)
			continue
		}
		if app.ID != test.wantID {
			t.Errorf("ResolveApp(%q) = %s, want %s", test.query, app.ID, test.wantID)
		}
	}
}

func TestResolveAppAmbiguous(t *testing.T) {
	_, err := ResolveApp(resolveApps, "shop")
	if CategoryOf(err) != CategoryValidation {
		t.Fatalf("err = %v, want a validation error", err)
	}
	if !strings.Contains(err.Error(), "shop-ios") || !strings.Contains(err.Error(), "shop-android") {
		t.Errorf("error %q does not list the candidates", err)
	}
}

func TestResolveAppNoMatch(t *testing.T) {
	_, err := ResolveApp(resolveApps, "zzz")
	if CategoryOf(err) != CategoryNotFound {
		t.Errorf("err = %v, want not_found", err)
	}
	_, err = ResolveApp(resolveApps, "")
	if CategoryOf(err) != CategoryValidation {
		t.Errorf("empty query: err = %v, want validation", err)
	}
	_, err = ResolveApp(nil, "shop")
	if CategoryOf(err) != CategoryNotFound {
		t.Errorf("no apps: err = %v, want not_found", err)
	}
}

func TestResolveEnvironment(t *testing.T) {
	environments := []release.Environment{
		{ID: "e1", AppID: "a1", Name: "production"},
		{ID: "e2", AppID: "a1", Name: "staging"},
	}
	environment, err := ResolveEnvironment(environments, "prod")
	if err != nil {
		t.Fatalf("ResolveEnvironment: %v", err)
	}
	if environment.ID != "e1" {
		t.Errorf("resolved %s, want e1", environment.ID)
	}
}
