package adapter

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jk278/lifetracker/models"
)

type WebDAVConfig struct {
	// BaseURL is the WebDAV endpoint, including any server-side path prefix
	// (e.g. https://dav.example.com/remote.php/dav/files/user).
	BaseURL  string
	Dir      string
	Username string
	Password string
	Timeout  time.Duration
}

type webDAVTransport struct {
	client *resty.Client
	dir    string
}

func NewWebDAVTransport(cfg WebDAVConfig) RemoteTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Dir == "" {
		cfg.Dir = "lifetracker"
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.Username, cfg.Password)

	return &webDAVTransport{
		client: cli,
		dir:    strings.Trim(cfg.Dir, "/"),
	}
}

func (w *webDAVTransport) TestConnection(ctx context.Context) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Depth", "0").
		SetHeader("Content-Type", "application/xml; charset=utf-8").
		SetBody(propfindBody).
		Execute("PROPFIND", "/")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	return mapHTTPError(resp)
}

func (w *webDAVTransport) EnsureLayout(ctx context.Context) error {
	dirs := make([]string, 0, len(models.AllEntityTypes)+1)
	dirs = append(dirs, "/"+w.dir)
	for _, t := range models.AllEntityTypes {
		dirs = append(dirs, "/"+w.dir+"/"+string(t))
	}

	for _, dir := range dirs {
		resp, err := w.client.R().
			SetContext(ctx).
			Execute("MKCOL", dir)
		if err != nil {
			return fmt.Errorf("%w: mkcol %s: %w", ErrRemoteUnavailable, dir, err)
		}
		// 405 means the collection already exists
		if resp.StatusCode() == http.StatusMethodNotAllowed {
			continue
		}
		if err := mapHTTPError(resp); err != nil {
			return fmt.Errorf("mkcol %s: %w", dir, err)
		}
	}

	return nil
}

func (w *webDAVTransport) List(ctx context.Context) ([]models.RemoteObject, error) {
	var objects []models.RemoteObject

	for _, entityType := range models.AllEntityTypes {
		dir := "/" + w.dir + "/" + string(entityType)

		resp, err := w.client.R().
			SetContext(ctx).
			SetHeader("Depth", "1").
			SetHeader("Content-Type", "application/xml; charset=utf-8").
			SetBody(propfindBody).
			Execute("PROPFIND", dir)
		if err != nil {
			return nil, fmt.Errorf("%w: propfind %s: %w", ErrRemoteUnavailable, dir, err)
		}
		// a type directory that was never written to simply does not exist yet
		if resp.StatusCode() == http.StatusNotFound {
			continue
		}
		if err := mapHTTPError(resp); err != nil {
			return nil, fmt.Errorf("propfind %s: %w", dir, err)
		}

		var ms multistatus
		if err := xml.Unmarshal(resp.Body(), &ms); err != nil {
			return nil, fmt.Errorf("decode propfind response for %s: %w", dir, err)
		}

		for _, r := range ms.Responses {
			obj, ok := w.objectFromResponse(entityType, r)
			if !ok {
				continue
			}
			objects = append(objects, obj)
		}
	}

	return objects, nil
}

// objectFromResponse turns one multistatus entry into a RemoteObject,
// skipping collections and anything that is not a record object.
func (w *webDAVTransport) objectFromResponse(entityType models.EntityType, r davResponse) (models.RemoteObject, bool) {
	prop := r.okProp()
	if prop.ResourceType.Collection != nil {
		return models.RemoteObject{}, false
	}

	href, err := url.PathUnescape(r.Href)
	if err != nil {
		href = r.Href
	}
	base := path.Base(href)
	if !strings.HasSuffix(base, ".json") {
		return models.RemoteObject{}, false
	}
	id := strings.TrimSuffix(base, ".json")
	if id == "" {
		return models.RemoteObject{}, false
	}

	return models.RemoteObject{
		ID:         id,
		Type:       entityType,
		Path:       w.objectPath(entityType, id),
		Hash:       prop.SyncHash,
		ModifiedAt: prop.modifiedTime(),
		Size:       prop.ContentLength,
	}, true
}

func (w *webDAVTransport) Get(ctx context.Context, objectPath string) (models.RecordSnapshot, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		Get(objectPath)
	if err != nil {
		return models.RecordSnapshot{}, fmt.Errorf("%w: get %s: %w", ErrRemoteUnavailable, objectPath, err)
	}
	if err := mapHTTPError(resp); err != nil {
		return models.RecordSnapshot{}, fmt.Errorf("get %s: %w", objectPath, err)
	}

	var record models.RecordSnapshot
	if err := json.Unmarshal(resp.Body(), &record); err != nil {
		return models.RecordSnapshot{}, fmt.Errorf("decode record at %s: %w", objectPath, err)
	}

	return record, nil
}

func (w *webDAVTransport) Put(ctx context.Context, record models.RecordSnapshot) (models.RemoteObject, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return models.RemoteObject{}, fmt.Errorf("encode record %s: %w", record.ID, err)
	}

	objectPath := w.objectPath(record.Type, record.ID)

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Put(objectPath)
	if err != nil {
		return models.RemoteObject{}, fmt.Errorf("%w: put %s: %w", ErrRemoteUnavailable, objectPath, err)
	}
	if err := mapHTTPError(resp); err != nil {
		return models.RemoteObject{}, fmt.Errorf("put %s: %w", objectPath, err)
	}

	if err := w.patchSyncProps(ctx, objectPath, record); err != nil {
		// servers without dead-property support degrade to hash recovery
		// through Get on the next round
		if errors.Is(err, ErrUnauthorized) {
			return models.RemoteObject{}, err
		}
	}

	return models.RemoteObject{
		ID:         record.ID,
		Type:       record.Type,
		Path:       objectPath,
		Hash:       record.Hash,
		ModifiedAt: record.ModifiedAt,
		Size:       int64(len(body)),
	}, nil
}

func (w *webDAVTransport) patchSyncProps(ctx context.Context, objectPath string, record models.RecordSnapshot) error {
	body, err := marshalProppatch(record.Hash, record.ModifiedAt)
	if err != nil {
		return fmt.Errorf("encode proppatch body: %w", err)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/xml; charset=utf-8").
		SetBody(body).
		Execute("PROPPATCH", objectPath)
	if err != nil {
		return fmt.Errorf("%w: proppatch %s: %w", ErrRemoteUnavailable, objectPath, err)
	}
	if err := mapHTTPError(resp); err != nil {
		return fmt.Errorf("proppatch %s: %w", objectPath, err)
	}

	return nil
}

func (w *webDAVTransport) Delete(ctx context.Context, objectPath string) error {
	resp, err := w.client.R().
		SetContext(ctx).
		Delete(objectPath)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrRemoteUnavailable, objectPath, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if err := mapHTTPError(resp); err != nil {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}

	return nil
}

func (w *webDAVTransport) objectPath(entityType models.EntityType, id string) string {
	return "/" + w.dir + "/" + string(entityType) + "/" + url.PathEscape(id) + ".json"
}
