package dav

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketdav/bucketdav/pkg/store"
)

func renderFragment(t *testing.T, href string, info *store.ObjectInfo) string {
	t.Helper()
	w := httptest.NewRecorder()
	err := writeMultistatus(w, []resourceResponse{newResourceResponse(href, info)})
	require.NoError(t, err)
	return w.Body.String()
}

func TestResourceResponse_Directory(t *testing.T) {
	body := renderFragment(t, "/docs", nil)

	assert.Contains(t, body, `<multistatus xmlns="DAV:">`)
	assert.Contains(t, body, "<href>/docs</href>")
	assert.Contains(t, body, "<resourcetype><collection/></resourcetype>")
	assert.Contains(t, body, "<getcontenttype>httpd/unix-directory</getcontenttype>")
	assert.Contains(t, body, "<getcontentlength></getcontentlength>")
	assert.Contains(t, body, "<getetag></getetag>")
	assert.Contains(t, body, "<status>HTTP/1.1 200 OK</status>")
}

func TestResourceResponse_File(t *testing.T) {
	uploaded := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body := renderFragment(t, "/docs/a.txt", &store.ObjectInfo{
		Key:         "docs/a.txt",
		Size:        1234,
		ETag:        "abc123",
		Uploaded:    uploaded,
		ContentType: "text/plain",
	})

	assert.Contains(t, body, "<href>/docs/a.txt</href>")
	assert.Contains(t, body, "<getcontentlength>1234</getcontentlength>")
	assert.Contains(t, body, "<getetag>abc123</getetag>")
	assert.Contains(t, body, "<getcontenttype>text/plain</getcontenttype>")
	assert.Contains(t, body, "<creationdate>2024-03-01T12:00:00Z</creationdate>")
	assert.Contains(t, body, "<getlastmodified>Fri, 01 Mar 2024 12:00:00 GMT</getlastmodified>")
	// plain files carry an empty resource type
	assert.Contains(t, body, "<resourcetype></resourcetype>")
}

func TestResourceResponse_UntypedFileDefaults(t *testing.T) {
	body := renderFragment(t, "/blob", &store.ObjectInfo{
		Key:      "blob",
		Size:     1,
		Uploaded: time.Now(),
	})
	assert.Contains(t, body, "<getcontenttype>application/octet-stream</getcontenttype>")
}

func TestResourceResponse_CustomResourceType(t *testing.T) {
	body := renderFragment(t, "/special", &store.ObjectInfo{
		Key:      "special",
		Size:     1,
		Uploaded: time.Now(),
		Custom:   map[string]string{store.CustomResourceTypeKey: "<collection/>"},
	})
	assert.Contains(t, body, "<resourcetype><collection/></resourcetype>")
}

func TestResourceResponse_SupportedLockEntries(t *testing.T) {
	body := renderFragment(t, "/docs", nil)
	assert.Equal(t, 2, strings.Count(body, "<lockentry>"))
	assert.Contains(t, body, "<exclusive></exclusive>")
	assert.Contains(t, body, "<shared></shared>")
	assert.Contains(t, body, "<lockdiscovery></lockdiscovery>")
}
