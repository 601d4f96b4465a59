// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued by POST /login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// CreateAppRequest is the body of POST /core/app.
type CreateAppRequest struct {
	AppName string `json:"appName"`
	OS      OS     `json:"os"`
}

// CreateEnvironmentRequest is the body of POST /core/environment. The
// service resolves the app by name, not by id.
type CreateEnvironmentRequest struct {
	EnvironmentName string `json:"environmentName"`
	AppName         string `json:"appName"`
}

// RollbackRequest is the body of POST /core/rollback.
type RollbackRequest struct {
	AppID         string `json:"appId"`
	EnvironmentID string `json:"environmentId"`
	VersionID     string `json:"versionId"`
}

// MandatoryRequest is the body of PUT /core/version/bundle/:id/mandatory.
// IsMandatory is the intended new value, not a toggle instruction.
type MandatoryRequest struct {
	IsMandatory bool `json:"isMandatory"`
}

// EnabledRequest is the body of PUT /core/version/bundle/:id/valid.
type EnabledRequest struct {
	IsValid bool `json:"isValid"`
}

// CreateAuthKeyRequest is the body of POST /core/auth-key/create.
type CreateAuthKeyRequest struct {
	Name string `json:"name"`
}

// InitUserRequest is the body of POST /init-user, accepted only while
// SetupStatus.Completed is false.
type InitUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}
