package adapters

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gitlab-devtools/internal/ports"
	"gitlab-devtools/internal/shared"
	"gitlab-devtools/internal/types"
)

// WebDAVAdapter manages remote content over the WebDAV verbs PROPFIND,
// MKCOL, DELETE and PUT. The server exposes a public and a private upload
// area; Root selects which one all paths are resolved under.
type WebDAVAdapter struct {
	Server   string
	Root     string
	Username string
	Password string
	Timeout  time.Duration
}

const defaultWebDAVTimeout = 60 * time.Second

func NewWebDAVAdapter(server string, root string, username string, password string, timeoutSec int) WebDAVAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultWebDAVTimeout
	}
	return WebDAVAdapter{
		Server:   strings.TrimRight(strings.TrimSpace(server), "/"),
		Root:     "/" + strings.Trim(strings.TrimSpace(root), "/"),
		Username: username,
		Password: password,
		Timeout:  timeout,
	}
}

// multistatus models the PROPFIND response body.
type multistatus struct {
	XMLName   xml.Name      `xml:"multistatus"`
	Responses []davResponse `xml:"response"`
}

type davResponse struct {
	Href     string        `xml:"href"`
	Propstat []davPropstat `xml:"propstat"`
}

type davPropstat struct {
	Status string  `xml:"status"`
	Prop   davProp `xml:"prop"`
}

type davProp struct {
	DisplayName   string          `xml:"displayname"`
	ContentLength string          `xml:"getcontentlength"`
	CreationDate  string          `xml:"creationdate"`
	LastModified  string          `xml:"getlastmodified"`
	ResourceType  davResourceType `xml:"resourcetype"`
}

type davResourceType struct {
	Collection *struct{} `xml:"collection"`
}

func (a WebDAVAdapter) Check(ctx context.Context, remotePath string) (bool, error) {
	entries, err := a.propfind(ctx, remotePath, 0)
	if err != nil {
		if errbuilder.CodeOf(err) == errbuilder.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return len(entries) > 0, nil
}

func (a WebDAVAdapter) Info(ctx context.Context, remotePath string) (types.StorageEntry, error) {
	entries, err := a.propfind(ctx, remotePath, 0)
	if err != nil {
		return types.StorageEntry{}, err
	}
	if len(entries) == 0 {
		return types.StorageEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("resource %s does not exist", a.ResourceURL(remotePath)))
	}
	return entries[0], nil
}

// List returns the entries directly under a directory. The directory's own
// entry, which WebDAV servers include in depth-1 responses, is dropped.
func (a WebDAVAdapter) List(ctx context.Context, remotePath string) ([]types.StorageEntry, error) {
	entries, err := a.propfind(ctx, remotePath, 1)
	if err != nil {
		return nil, err
	}
	self := a.resourcePath(remotePath)
	var out []types.StorageEntry
	for _, entry := range entries {
		if strings.Trim(entry.Path, "/") == strings.Trim(self, "/") {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (a WebDAVAdapter) MkDir(ctx context.Context, remotePath string) error {
	resp, err := a.do(ctx, "MKCOL", remotePath, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// 405 means the collection already exists
	if resp.StatusCode == http.StatusMethodNotAllowed {
		return nil
	}
	return a.checkStatus(resp, remotePath)
}

func (a WebDAVAdapter) RemoveAll(ctx context.Context, remotePath string) error {
	resp, err := a.do(ctx, http.MethodDelete, remotePath, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return a.checkStatus(resp, remotePath)
}

func (a WebDAVAdapter) UploadFile(ctx context.Context, local string, remote string) error {
	file, err := os.Open(local)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open local file").
			WithCause(err)
	}
	defer file.Close()
	headers := map[string]string{"Content-Type": "application/octet-stream"}
	resp, err := a.do(ctx, http.MethodPut, remote, file, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return a.checkStatus(resp, remote)
}

// ResourceURL returns the full URL of a path inside the selected area.
func (a WebDAVAdapter) ResourceURL(remotePath string) string {
	return a.Server + escapePath(a.resourcePath(remotePath))
}

func (a WebDAVAdapter) propfind(ctx context.Context, remotePath string, depth int) ([]types.StorageEntry, error) {
	headers := map[string]string{
		"Depth":        strconv.Itoa(depth),
		"Content-Type": "application/xml",
	}
	body := strings.NewReader(`<?xml version="1.0"?><d:propfind xmlns:d="DAV:"><d:allprop/></d:propfind>`)
	resp, err := a.do(ctx, "PROPFIND", remotePath, body, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("resource %s does not exist", a.ResourceURL(remotePath)))
	}
	if resp.StatusCode != http.StatusMultiStatus && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		payload, _ := io.ReadAll(resp.Body)
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("webdav propfind failed").
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, a.ResourceURL(remotePath), string(payload)))
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read webdav response").
			WithCause(err)
	}
	return a.parseMultistatus(payload)
}

func (a WebDAVAdapter) parseMultistatus(payload []byte) ([]types.StorageEntry, error) {
	var status multistatus
	if err := xml.Unmarshal(payload, &status); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse webdav multistatus").
			WithCause(err)
	}
	entries := make([]types.StorageEntry, 0, len(status.Responses))
	for _, response := range status.Responses {
		prop, ok := successfulProp(response)
		if !ok {
			continue
		}
		href, err := url.PathUnescape(response.Href)
		if err != nil {
			href = response.Href
		}
		entry := types.StorageEntry{
			Path:  href,
			Name:  prop.DisplayName,
			IsDir: prop.ResourceType.Collection != nil,
		}
		if entry.Name == "" {
			entry.Name = path.Base(strings.TrimRight(href, "/"))
		}
		if size, err := strconv.ParseInt(prop.ContentLength, 10, 64); err == nil {
			entry.Size = size
		}
		if created, err := time.Parse(time.RFC3339, prop.CreationDate); err == nil {
			entry.Created = created.UTC()
		}
		if modified, err := time.Parse(time.RFC1123, prop.LastModified); err == nil {
			entry.Modified = modified.UTC()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func successfulProp(response davResponse) (davProp, bool) {
	for _, propstat := range response.Propstat {
		if strings.Contains(propstat.Status, "200") || propstat.Status == "" {
			return propstat.Prop, true
		}
	}
	return davProp{}, false
}

func (a WebDAVAdapter) do(ctx context.Context, method string, remotePath string, body io.Reader, headers map[string]string) (*http.Response, error) {
	endpoint := a.Server + escapePath(a.resourcePath(remotePath))
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create webdav request").
			WithCause(err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if a.Username != "" || a.Password != "" {
		req.SetBasicAuth(a.Username, a.Password)
	}
	client := &http.Client{Timeout: a.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("webdav request failed").
			WithCause(err)
	}
	return resp, nil
}

func (a WebDAVAdapter) checkStatus(resp *http.Response, remotePath string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	payload, _ := io.ReadAll(resp.Body)
	code := errbuilder.CodeInternal
	if resp.StatusCode == http.StatusNotFound {
		code = errbuilder.CodeNotFound
	}
	return errbuilder.New().
		WithCode(code).
		WithMsg("webdav request failed").
		WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, a.ResourceURL(remotePath), string(payload)))
}

func (a WebDAVAdapter) resourcePath(remotePath string) string {
	cleaned := "/" + strings.TrimLeft(strings.TrimSpace(remotePath), "/")
	if cleaned == "/" {
		return a.Root
	}
	return a.Root + cleaned
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

var _ ports.StoragePort = WebDAVAdapter{}
