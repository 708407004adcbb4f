package dav

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bucketdav/bucketdav/pkg/store"
)

const (
	davXMLHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

	collectionResourceType = "<collection/>"
	directoryContentType   = "httpd/unix-directory"
	defaultContentType     = "application/octet-stream"
)

type multistatus struct {
	XMLName   xml.Name           `xml:"multistatus"`
	Xmlns     string             `xml:"xmlns,attr"`
	Responses []resourceResponse `xml:"response"`
}

type resourceResponse struct {
	Href     string   `xml:"href"`
	Propstat propstat `xml:"propstat"`
}

type propstat struct {
	Prop   resourceProps `xml:"prop"`
	Status string        `xml:"status"`
}

type resourceProps struct {
	ResourceType  rawXML        `xml:"resourcetype"`
	CreationDate  string        `xml:"creationdate"`
	ContentLength string        `xml:"getcontentlength"`
	LastModified  string        `xml:"getlastmodified"`
	ETag          string        `xml:"getetag"`
	SupportedLock supportedLock `xml:"supportedlock"`
	LockDiscovery struct{}      `xml:"lockdiscovery"`
	ContentType   string        `xml:"getcontenttype"`
}

// rawXML carries pre-rendered markup, e.g. <collection/>.
type rawXML struct {
	Inner string `xml:",innerxml"`
}

type supportedLock struct {
	Entries []lockEntry `xml:"lockentry"`
}

type lockEntry struct {
	Scope lockScope `xml:"lockscope"`
	Type  lockType  `xml:"locktype"`
}

type lockScope struct {
	Exclusive *struct{} `xml:"exclusive,omitempty"`
	Shared    *struct{} `xml:"shared,omitempty"`
}

type lockType struct {
	Write struct{} `xml:"write"`
}

// Every resource advertises exclusive-write and shared-write lock
// support even though locking is a no-op, see handleLock.
var lockEntries = supportedLock{
	Entries: []lockEntry{
		{Scope: lockScope{Exclusive: &struct{}{}}},
		{Scope: lockScope{Shared: &struct{}{}}},
	},
}

// newResourceResponse renders the <response> fragment for one resource.
// A nil info means a synthetic directory: collection resource type,
// directory content type, current timestamps, no length and no etag.
func newResourceResponse(href string, info *store.ObjectInfo) resourceResponse {
	props := resourceProps{
		ResourceType:  rawXML{Inner: collectionResourceType},
		CreationDate:  time.Now().UTC().Format(time.RFC3339),
		LastModified:  time.Now().UTC().Format(http.TimeFormat),
		ContentType:   directoryContentType,
		SupportedLock: lockEntries,
	}
	if info != nil {
		props.CreationDate = info.Uploaded.UTC().Format(time.RFC3339)
		props.LastModified = info.Uploaded.UTC().Format(http.TimeFormat)
		props.ContentLength = strconv.FormatInt(info.Size, 10)
		props.ETag = info.ETag
		props.ContentType = info.ContentType
		if props.ContentType == "" {
			props.ContentType = defaultContentType
		}
		// an empty resourcetype means "plain file" in DAV terms
		props.ResourceType = rawXML{Inner: info.Custom[store.CustomResourceTypeKey]}
	}
	return resourceResponse{
		Href: href,
		Propstat: propstat{
			Prop:   props,
			Status: "HTTP/1.1 200 OK",
		},
	}
}

func writeMultistatus(w http.ResponseWriter, responses []resourceResponse) error {
	body, err := xml.Marshal(multistatus{
		Xmlns:     "DAV:",
		Responses: responses,
	})
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/xml")
	if _, err := w.Write(append([]byte(davXMLHeader), body...)); err != nil {
		slog.Warn("writing multistatus body failed", "error", err)
	}
	return nil
}
