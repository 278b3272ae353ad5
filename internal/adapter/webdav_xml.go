package adapter

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"
)

// syncPropNS is the namespace of the dead properties this transport attaches
// to every uploaded object. Keeping the content hash in a property lets List
// recover it from a single PROPFIND instead of downloading bodies.
const syncPropNS = "urn:lifetracker:sync"

const propfindBody = `<?xml version="1.0" encoding="utf-8"?>
<d:propfind xmlns:d="DAV:" xmlns:lt="` + syncPropNS + `">
  <d:prop>
    <d:resourcetype/>
    <d:getcontentlength/>
    <d:getlastmodified/>
    <lt:sync-hash/>
    <lt:sync-modified/>
  </d:prop>
</d:propfind>`

type proppatchUpdate struct {
	XMLName xml.Name      `xml:"d:propertyupdate"`
	DAV     string        `xml:"xmlns:d,attr"`
	LT      string        `xml:"xmlns:lt,attr"`
	Set     proppatchProp `xml:"d:set>d:prop"`
}

type proppatchProp struct {
	Hash     string `xml:"lt:sync-hash"`
	Modified string `xml:"lt:sync-modified"`
}

func marshalProppatch(hash string, modified time.Time) ([]byte, error) {
	body, err := xml.Marshal(proppatchUpdate{
		DAV: "DAV:",
		LT:  syncPropNS,
		Set: proppatchProp{
			Hash:     hash,
			Modified: modified.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

type multistatus struct {
	XMLName   xml.Name      `xml:"multistatus"`
	Responses []davResponse `xml:"response"`
}

type davResponse struct {
	Href      string     `xml:"href"`
	Propstats []propstat `xml:"propstat"`
}

type propstat struct {
	Status string  `xml:"status"`
	Prop   davProp `xml:"prop"`
}

type davProp struct {
	ResourceType  davResourceType `xml:"resourcetype"`
	ContentLength int64           `xml:"getcontentlength"`
	LastModified  string          `xml:"getlastmodified"`
	SyncHash      string          `xml:"sync-hash"`
	SyncModified  string          `xml:"sync-modified"`
}

type davResourceType struct {
	Collection *struct{} `xml:"collection"`
}

// okProp returns the merged properties of the 2xx propstat blocks. Servers
// split found and missing properties into separate blocks, so the custom
// sync properties may legitimately be absent here.
func (r davResponse) okProp() davProp {
	var merged davProp
	for _, ps := range r.Propstats {
		if !strings.Contains(ps.Status, " 200 ") && !strings.HasSuffix(ps.Status, " 200") {
			continue
		}
		if ps.Prop.ResourceType.Collection != nil {
			merged.ResourceType.Collection = ps.Prop.ResourceType.Collection
		}
		if ps.Prop.ContentLength > 0 {
			merged.ContentLength = ps.Prop.ContentLength
		}
		if ps.Prop.LastModified != "" {
			merged.LastModified = ps.Prop.LastModified
		}
		if ps.Prop.SyncHash != "" {
			merged.SyncHash = ps.Prop.SyncHash
		}
		if ps.Prop.SyncModified != "" {
			merged.SyncModified = ps.Prop.SyncModified
		}
	}
	return merged
}

// modifiedTime prefers the transport's own sync-modified property over the
// server-assigned getlastmodified, which only carries upload time.
func (p davProp) modifiedTime() time.Time {
	if p.SyncModified != "" {
		if ts, err := time.Parse(time.RFC3339Nano, p.SyncModified); err == nil {
			return ts
		}
	}
	if p.LastModified != "" {
		if ts, err := http.ParseTime(p.LastModified); err == nil {
			return ts
		}
	}
	return time.Time{}
}
