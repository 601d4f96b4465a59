// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"encoding/json"
	"testing"
)

func bundleIDs(bundles []Bundle) []string {
	ids := make([]string, len(bundles))
	for i, bundle := range bundles {
		ids[i] = bundle.ID
	}
	return ids
}

func TestMarkActive(t *testing.T) {
	bundles := []Bundle{{ID: "b1"}, {ID: "b2"}, {ID: "b3"}}

	t.Run("current bundle in page", func(t *testing.T) {
		marked := MarkActive(Version{ID: "v1", CurrentBundleID: "b2"}, bundles)
		want := []bool{false, true, false}
		for i, bundle := range marked {
			if bundle.IsActive != want[i] {
				t.Errorf("bundle %s IsActive = %v, want %v", bundle.ID, bundle.IsActive, want[i])
			}
		}
		if CountActive(marked) != 1 {
			t.Errorf("CountActive = %d, want 1", CountActive(marked))
		}
	})

	t.Run("current bundle outside page", func(t *testing.T) {
		marked := MarkActive(Version{ID: "v1", CurrentBundleID: "b9"}, bundles)
		if CountActive(marked) != 0 {
			t.Errorf("CountActive = %d, want 0", CountActive(marked))
		}
	})

	t.Run("no current bundle", func(t *testing.T) {
		marked := MarkActive(Version{ID: "v1"}, []Bundle{{ID: ""}, {ID: "b1"}})
		if CountActive(marked) != 0 {
			t.Errorf("empty CurrentBundleID marked %d bundles", CountActive(marked))
		}
	})

	t.Run("stale flags are discarded", func(t *testing.T) {
		stale := []Bundle{{ID: "b1", IsActive: true}, {ID: "b2"}}
		marked := MarkActive(Version{ID: "v1", CurrentBundleID: "b2"}, stale)
		if marked[0].IsActive || !marked[1].IsActive {
			t.Errorf("IsActive = [%v %v], want [false true]", marked[0].IsActive, marked[1].IsActive)
		}
		if !stale[0].IsActive {
			t.Error("MarkActive modified its input")
		}
	})

	t.Run("empty bundle list", func(t *testing.T) {
		marked := MarkActive(Version{ID: "v1", CurrentBundleID: "b1"}, nil)
		if len(marked) != 0 {
			t.Errorf("len = %d, want 0", len(marked))
		}
	})
}

func TestMarkActiveAtMostOne(t *testing.T) {
	bundles := []Bundle{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	for _, current := range []string{"", "a", "b", "c", "d", "missing"} {
		version := Version{ID: "v", CurrentBundleID: current}
		marked := MarkActive(version, bundles)
		count := CountActive(marked)
		if count > 1 {
			t.Fatalf("current %q: %d active bundles", current, count)
		}
		if count == 1 {
			active, _ := SplitActive(marked)
			if active.ID != version.CurrentBundleID {
				t.Errorf("current %q: active bundle is %q", current, active.ID)
			}
		}
	}
}

func TestSplitActive(t *testing.T) {
	t.Run("history is descending and excludes active", func(t *testing.T) {
		bundles := MarkActive(Version{CurrentBundleID: "b2"}, []Bundle{
			{ID: "b3", SequenceID: 3},
			{ID: "b1", SequenceID: 1},
			{ID: "b2", SequenceID: 2},
		})
		active, history := SplitActive(bundles)
		if active == nil || active.ID != "b2" {
			t.Fatalf("active = %v, want b2", active)
		}
		got := bundleIDs(history)
		want := []string{"b3", "b1"}
		if len(got) != len(want) {
			t.Fatalf("history = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("history = %v, want %v", got, want)
				break
			}
		}
	})

	t.Run("no active bundle", func(t *testing.T) {
		active, history := SplitActive([]Bundle{
			{ID: "b1", SequenceID: 1},
			{ID: "b3", SequenceID: 3},
			{ID: "b2", SequenceID: 2},
		})
		if active != nil {
			t.Errorf("active = %v, want nil", active)
		}
		got := bundleIDs(history)
		if got[0] != "b3" || got[1] != "b2" || got[2] != "b1" {
			t.Errorf("history = %v, want [b3 b2 b1]", got)
		}
	})

	t.Run("zero bundles", func(t *testing.T) {
		active, history := SplitActive(nil)
		if active != nil {
			t.Errorf("active = %v, want nil", active)
		}
		if history == nil || len(history) != 0 {
			t.Errorf("history = %#v, want empty non-nil slice", history)
		}
	})

	t.Run("input order preserved", func(t *testing.T) {
		input := []Bundle{{ID: "b1", SequenceID: 1}, {ID: "b2", SequenceID: 2}}
		SplitActive(input)
		if input[0].ID != "b1" {
			t.Error("SplitActive reordered its input")
		}
	})
}

func TestParseOS(t *testing.T) {
	for _, test := range []struct {
		input   string
		want    OS
		wantErr bool
	}{
		{input: "ios", want: OSiOS},
		{input: "Android", want: OSAndroid},
		{input: " IOS ", want: OSiOS},
		{input: "windows", wantErr: true},
		{input: "", wantErr: true},
	} {
		got, err := ParseOS(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseOS(%q) succeeded, want error", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOS(%q): %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseOS(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestEnvironmentAccessKeyWireName(t *testing.T) {
	var environment Environment
	if err := json.Unmarshal([]byte(`{"id":"e1","appId":"a1","name":"production","key":"deploy-key"}`), &environment); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if environment.AccessKey != "deploy-key" {
		t.Errorf("AccessKey = %q, want %q", environment.AccessKey, "deploy-key")
	}
}

func TestUserIgnoresPassword(t *testing.T) {
	data := []byte(`{"id":"u1","username":"ops","password":"$2a$10$hash","roles":["admin"],"isValid":true}`)
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(encoded, &raw); err != nil {
		t.Fatalf("Unmarshal to map: %v", err)
	}
	if _, present := raw["password"]; present {
		t.Error("password field survived decoding")
	}
}
