// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"fmt"
	"strings"
	"time"
)

// OS identifies the client platform an application ships to.
type OS string

const (
	OSiOS     OS = "ios"
	OSAndroid OS = "android"
)

// ParseOS accepts an OS name in any letter case.
func ParseOS(name string) (OS, error) {
	os := OS(strings.ToLower(strings.TrimSpace(name)))
	if !os.Valid() {
		return "", fmt.Errorf("unknown os %q (expected %q or %q)", name, OSiOS, OSAndroid)
	}
	return os, nil
}

// Valid reports whether os is one of the supported platforms.
func (os OS) Valid() bool {
	return os == OSiOS || os == OSAndroid
}

// App is a distributable product definition. Apps are created by an
// operator and never modified by this client afterwards.
type App struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OS        OS        `json:"os"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntityID returns the app's id.
func (a App) EntityID() string { return a.ID }

// Environment is a named deployment target (staging, production) within
// one App. AccessKey is the deployment key client SDKs present when
// checking for updates; the service names it "key".
type Environment struct {
	ID        string    `json:"id"`
	AppID     string    `json:"appId"`
	Name      string    `json:"name"`
	AccessKey string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntityID returns the environment's id.
func (e Environment) EntityID() string { return e.ID }

// Version is a client binary version line within an Environment.
// CurrentBundleID names the bundle served to clients on this version
// and is empty until the first bundle is published.
type Version struct {
	ID              string    `json:"id"`
	EnvironmentID   string    `json:"environmentId"`
	AppVersion      string    `json:"appVersion"`
	VersionNumber   int64     `json:"versionNumber"`
	CurrentBundleID string    `json:"currentBundleId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// EntityID returns the version's id.
func (v Version) EntityID() string { return v.ID }

// Bundle is one published release artifact within a Version.
//
// SequenceID increases monotonically with publish order inside a
// Version. IsValid is the operator's enabled/disabled switch and is
// orthogonal to activation: a disabled bundle stays in the history but
// is never a valid activation target. Failed, Installed, and Active are
// install counters reported by clients.
type Bundle struct {
	ID            string    `json:"id"`
	VersionID     string    `json:"versionId"`
	EnvironmentID string    `json:"environmentId"`
	AppID         string    `json:"appId"`
	SequenceID    int64     `json:"sequenceId"`
	Hash          string    `json:"hash"`
	Size          int64     `json:"size"`
	DownloadFile  string    `json:"downloadFile"`
	Description   string    `json:"description,omitempty"`
	Label         string    `json:"label,omitempty"`
	IsMandatory   bool      `json:"isMandatory"`
	IsValid       bool      `json:"isValid"`
	Failed        int64     `json:"failed"`
	Installed     int64     `json:"installed"`
	Active        int64     `json:"active"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// IsActive is computed by MarkActive from the owning Version's
	// CurrentBundleID. It is emitted in JSON output for display but the
	// service never sets it.
	IsActive bool `json:"isActive"`
}

// EntityID returns the bundle's id.
func (b Bundle) EntityID() string { return b.ID }

// User is the identity behind an operator session, as returned by
// GET /core/user. The service also returns a password hash on this
// endpoint; it is deliberately not decoded.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	IsValid   bool      `json:"isValid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthKey is a long-lived credential for non-interactive access (bundle
// uploads from CI). It is distinct from the operator session token.
type AuthKey struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	IsValid   bool      `json:"isValid"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetupStatus reports whether the first-run bootstrap (creating the
// initial operator account) has been completed on the service.
type SetupStatus struct {
	Completed bool `json:"completed"`
}
