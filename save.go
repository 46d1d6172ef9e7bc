package clipsave

import (
	"context"
	"time"
)

// DefaultAssetsDirName is the directory, relative to the saved document,
// that holds its images when SaveContext.AssetsDirName is empty.
const DefaultAssetsDirName = "assets"

// AuthScheme selects how the WebDAV client authenticates.
type AuthScheme string

// AuthScheme constants for WebDAVConfig.
const (
	AuthBasic  AuthScheme = "basic"
	AuthDigest AuthScheme = "digest"
)

// WebDAVConfig holds connection settings for a remote document store.
type WebDAVConfig struct {
	URL        string     `json:"url" yaml:"url"`
	Username   string     `json:"username" yaml:"username"`
	Password   string     `json:"password" yaml:"password"`
	AuthScheme AuthScheme `json:"authScheme" yaml:"authScheme"`
	BasePath   string     `json:"basePath" yaml:"basePath"`
}

// SaveConfig holds the destination settings a strategy validates and uses.
type SaveConfig struct {
	// LocalBasePath is a folder inside the download directory.
	LocalBasePath string       `json:"localBasePath" yaml:"localBasePath"`
	WebDAV        WebDAVConfig `json:"webdav" yaml:"webdav"`
}

// SaveContext is the complete input describing one save operation.
// It is built once by the caller and not modified by strategies.
type SaveContext struct {
	Content string
	// DestinationName is a path-like name without extension,
	// e.g. "notes/2024/article".
	DestinationName string
	Assets          []*AssetTask
	AssetsDirName   string
	Title           string
	SourceURL       string
	Timestamp       time.Time
	Config          SaveConfig
}

// AssetsDir returns AssetsDirName or DefaultAssetsDirName when unset.
func (c *SaveContext) AssetsDir() string {
	if c.AssetsDirName == "" {
		return DefaultAssetsDirName
	}
	return c.AssetsDirName
}

// Validate returns an error if the context cannot be saved.
func (c *SaveContext) Validate() error {
	if c == nil {
		return Errorf(EINVALID, "save context required")
	}
	if SanitizeGeneratedPath(c.DestinationName) == "" {
		return Errorf(EINVALID, "destination name required")
	}
	return nil
}

// FailureKind classifies a failed save so callers can branch on it.
type FailureKind string

// FailureKind constants for SaveResult.
const (
	FailureNetwork    FailureKind = "network"
	FailurePermission FailureKind = "permission"
	FailureValidation FailureKind = "validation"
	FailureUnknown    FailureKind = "unknown"
)

// FailureKindOf maps an error onto a FailureKind using its error code.
func FailureKindOf(err error) FailureKind {
	switch ErrorCode(err) {
	case EINVALID, ENOTFOUND:
		return FailureValidation
	case ENETWORK, ETIMEOUT, EINTERRUPTED:
		return FailureNetwork
	case EPERMISSION:
		return FailurePermission
	}
	return FailureUnknown
}

// SaveMetrics summarizes what a save wrote.
type SaveMetrics struct {
	ByteSize        int `json:"byteSize"`
	AssetsSucceeded int `json:"assetsSucceeded"`
	AssetsFailed    int `json:"assetsFailed"`
}

// SaveResult is the uniform outcome of one save operation.
type SaveResult struct {
	Succeeded       bool         `json:"succeeded"`
	DestinationPath string       `json:"destinationPath,omitempty"`
	AssetCount      int          `json:"assetCount,omitempty"`
	CompletedAt     time.Time    `json:"completedAt"`
	FailureReason   string       `json:"failureReason,omitempty"`
	FailureKind     FailureKind  `json:"failureKind,omitempty"`
	Metrics         *SaveMetrics `json:"metrics,omitempty"`

	// Content is the document as written, with failed asset references
	// reverted. It is only set on success.
	Content string `json:"-"`
}

// NewFailureResult builds a failed SaveResult from err. The failure kind is
// derived from the error code and the reason from the error message.
func NewFailureResult(err error) *SaveResult {
	reason := ErrorMessage(err)
	if ErrorCode(err) == EINTERNAL {
		reason = err.Error()
	}
	return &SaveResult{
		Succeeded:     false,
		CompletedAt:   time.Now().UTC(),
		FailureReason: reason,
		FailureKind:   FailureKindOf(err),
	}
}

// StrategyDescriptor identifies a save strategy.
type StrategyDescriptor struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	// RunsPrivileged means Save must execute in the privileged context
	// reached through a Relay.
	RunsPrivileged bool `json:"runsPrivileged"`
}

// Strategy persists a SaveContext to one destination backend.
type Strategy interface {
	// Descriptor returns the strategy's immutable identity.
	Descriptor() StrategyDescriptor

	// Validate checks that cfg holds what Save needs.
	// Multiple problems are combined with errors.Join.
	Validate(cfg SaveConfig) error

	// Save persists sc and always returns a non-nil result.
	Save(ctx context.Context, sc *SaveContext) *SaveResult
}
