// Package webdav provides a WebDAV implementation of clipsave.ObjectStore.
package webdav

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/clipsave"
	"github.com/icholy/digest"
)

// DefaultTimeout is the default timeout for one WebDAV request.
const DefaultTimeout = 30 * time.Second

const propfindBody = `<?xml version="1.0" encoding="utf-8"?>
<D:propfind xmlns:D="DAV:"><D:prop><D:resourcetype/></D:prop></D:propfind>`

// Ensure Client implements clipsave.ObjectStore at compile time.
var _ clipsave.ObjectStore = (*Client)(nil)

// Client is a path-addressed WebDAV client. Paths are relative to the
// configured server URL and use "/" as separator.
type Client struct {
	base     *url.URL
	client   *http.Client
	timeout  time.Duration
	scheme   clipsave.AuthScheme
	username string
	password string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for each request.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped
// when digest authentication is configured.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a Client from cfg. It returns an EINVALID error when the
// URL or authentication settings are unusable.
func NewClient(cfg clipsave.WebDAVConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil {
		return nil, clipsave.Errorf(clipsave.EINVALID, "invalid WebDAV URL %q: %v", cfg.URL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, clipsave.Errorf(clipsave.EINVALID, "WebDAV URL must be an absolute http(s) URL, got %q", cfg.URL)
	}

	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = clipsave.AuthBasic
	}
	if scheme != clipsave.AuthBasic && scheme != clipsave.AuthDigest {
		return nil, clipsave.Errorf(clipsave.EINVALID, "unsupported WebDAV auth scheme %q", cfg.AuthScheme)
	}
	if scheme == clipsave.AuthDigest && cfg.Username == "" {
		return nil, clipsave.Errorf(clipsave.EINVALID, "digest authentication requires a username")
	}

	c := &Client{
		base:     base,
		timeout:  DefaultTimeout,
		scheme:   scheme,
		username: cfg.Username,
		password: cfg.Password,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := &http.Client{}
	if c.client != nil {
		*hc = *c.client
	}
	hc.Timeout = c.timeout
	if scheme == clipsave.AuthDigest {
		next := hc.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		hc.Transport = &digest.Transport{
			Username:  c.username,
			Password:  c.password,
			Transport: next,
		}
	}
	c.client = hc

	return c, nil
}

// Exists reports whether a resource exists at p. Any failure, including
// transport errors and unexpected responses, is reported as false.
func (c *Client) Exists(ctx context.Context, p string) bool {
	p = strings.Trim(p, "/")
	if p == "" {
		return true
	}
	if !clipsave.IsSafePath(p) {
		return false
	}

	resp, err := c.do(ctx, "PROPFIND", c.resolve(p, false), strings.NewReader(propfindBody), map[string]string{
		"Depth":        "0",
		"Content-Type": "application/xml; charset=utf-8",
	})
	if err != nil {
		return false
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusMultiStatus:
		return multistatusFound(resp.Body)
	case http.StatusOK, http.StatusNoContent:
		return true
	case http.StatusMethodNotAllowed:
		return c.head(ctx, p)
	}
	return false
}

func (c *Client) head(ctx context.Context, p string) bool {
	resp, err := c.do(ctx, http.MethodHead, c.resolve(p, false), nil, nil)
	if err != nil {
		return false
	}
	defer drain(resp)
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// EnsureDirectory creates the collection at p and any missing parents.
// The root always succeeds. A failure anywhere along the way is returned as
// an EPERMISSION error naming the segment that could not be created, or
// ENETWORK when the server could not be reached.
func (c *Client) EnsureDirectory(ctx context.Context, p string) error {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	if !clipsave.IsSafePath(p) {
		return clipsave.Errorf(clipsave.EINVALID, "unsafe directory path %q", p)
	}
	if c.Exists(ctx, p) {
		return nil
	}

	if parent := clipsave.PathDir(p); parent != "" {
		if err := c.EnsureDirectory(ctx, parent); err != nil {
			if clipsave.ErrorCode(err) == clipsave.ENETWORK {
				return err
			}
			return clipsave.Errorf(clipsave.EPERMISSION, "cannot create %q: %s", p, clipsave.ErrorMessage(err))
		}
	}

	resp, err := c.do(ctx, "MKCOL", c.resolve(p, true), nil, nil)
	if err != nil {
		return clipsave.Errorf(clipsave.ENETWORK, "create directory %q: %v", p, err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK, http.StatusNoContent, http.StatusMethodNotAllowed:
		// 405 means the collection already exists.
		return nil
	}
	return clipsave.Errorf(clipsave.EPERMISSION, "directory %q: HTTP %d", p, resp.StatusCode)
}

// Put writes data to p after ensuring its parent directory exists. When
// overwrite is false and p already exists, nothing is written and the result
// has FileExists set without an error.
func (c *Client) Put(ctx context.Context, p string, data []byte, overwrite bool) clipsave.PutResult {
	p = strings.Trim(p, "/")
	result := clipsave.PutResult{FinalPath: p}
	if !clipsave.IsSafePath(p) {
		result.Err = clipsave.Errorf(clipsave.EINVALID, "unsafe path %q", p)
		return result
	}

	if dir := clipsave.PathDir(p); dir != "" {
		if err := c.EnsureDirectory(ctx, dir); err != nil {
			result.Err = err
			return result
		}
	}

	if !overwrite && c.Exists(ctx, p) {
		result.FileExists = true
		return result
	}

	headers := map[string]string{"Content-Type": contentType(p)}
	if !overwrite {
		headers["If-None-Match"] = "*"
	}
	resp, err := c.do(ctx, http.MethodPut, c.resolve(p, false), bytes.NewReader(data), headers)
	if err != nil {
		result.Err = clipsave.Errorf(clipsave.ENETWORK, "upload %q: %v", p, err)
		return result
	}
	defer drain(resp)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		result.Success = true
	case resp.StatusCode == http.StatusPreconditionFailed:
		result.FileExists = true
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		result.Err = clipsave.Errorf(clipsave.EPERMISSION, "upload %q: HTTP %d", p, resp.StatusCode)
	default:
		result.Err = clipsave.Errorf(clipsave.ENETWORK, "upload %q: HTTP %d", p, resp.StatusCode)
	}
	return result
}

// URL returns the absolute URL of the resource at p.
func (c *Client) URL(p string) string {
	return c.resolve(strings.Trim(p, "/"), false)
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.scheme == clipsave.AuthBasic && c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return c.client.Do(req)
}

// resolve returns the URL of p below the base URL. Collections get a
// trailing slash.
func (c *Client) resolve(p string, collection bool) string {
	u := c.base.JoinPath(strings.Split(p, "/")...)
	s := u.String()
	if collection && !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}

// multistatusFound reports whether a 207 body describes an existing
// resource, i.e. holds a 2xx status for it.
func multistatusFound(body io.Reader) bool {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return false
	}
	root := doc.Root()
	if root == nil || root.Tag != "multistatus" {
		return false
	}
	for _, response := range root.SelectElements("response") {
		if status := response.SelectElement("status"); status != nil && statusOK(status.Text()) {
			return true
		}
		for _, propstat := range response.SelectElements("propstat") {
			if status := propstat.SelectElement("status"); status != nil && statusOK(status.Text()) {
				return true
			}
		}
	}
	return false
}

// statusOK parses a status line such as "HTTP/1.1 200 OK".
func statusOK(line string) bool {
	fields := strings.Fields(line)
	return len(fields) >= 2 && strings.HasPrefix(fields[1], "2")
}

func contentType(p string) string {
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".md", ".markdown":
		return "text/markdown; charset=utf-8"
	case "":
		return "application/octet-stream"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return "application/octet-stream"
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// String describes the client for logs without credentials.
func (c *Client) String() string {
	return fmt.Sprintf("webdav(%s, %s)", c.base.Redacted(), c.scheme)
}
