// Package clipsave persists clipped web content and its embedded images to
// a destination backend: the local download directory or a remote WebDAV
// document store.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., webdav/, sqlite/, fs/).
package clipsave
