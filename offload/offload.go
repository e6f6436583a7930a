package offload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/rcontext"
)

type Backend int

const (
	Primary Backend = iota
	Secondary
)

func (b Backend) String() string {
	if b == Secondary {
		return "secondary"
	}
	return "primary"
}

// Result is a link or a failure marker, never both. Expiry is attached by
// the caller; the backends do not report it.
type Result struct {
	Link   string
	Failed bool
	Reason string
}

// Upload pushes an artifact to the requested backend. A backend that
// rejects the media with a non-success status yields a failed Result
// rather than an error when that rejection is an expected outcome (the
// primary bounces files it considers too large); transport-level failures
// are errors.
func Upload(ctx rcontext.RequestContext, a *artifacts.Artifact, backend Backend) (*Result, error) {
	ctx.Log.Info("Uploading " + humanize.Bytes(uint64(a.Size)) + " to " + backend.String() + " backend")
	if backend == Secondary {
		return uploadSecondary(ctx, a)
	}
	return uploadPrimary(ctx, a)
}

func uploadPrimary(ctx rcontext.RequestContext, a *artifacts.Artifact) (*Result, error) {
	retention := strconv.Itoa(ctx.Config.Offload.RetentionHours) + "h"
	fields := map[string]string{
		"reqtype": "fileupload",
		"time":    retention,
	}

	status, body, err := postMultipart(ctx, ctx.Config.Offload.PrimaryUrl, fields, "fileToUpload", "file."+a.Ext, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrBackendUnreachable)
	}
	if status < 200 || status > 299 {
		// Expected for oversized files; the caller inspects the result.
		return &Result{Failed: true, Reason: "status " + strconv.Itoa(status)}, nil
	}

	link := strings.TrimSpace(string(body))
	if link == "" {
		return &Result{Failed: true, Reason: "empty response"}, nil
	}
	return &Result{Link: link}, nil
}

type secondaryResponse struct {
	Data struct {
		Link  string `json:"link"`
		Error string `json:"error"`
	} `json:"data"`
	Success bool `json:"success"`
}

func uploadSecondary(ctx rcontext.RequestContext, a *artifacts.Artifact) (*Result, error) {
	status, body, err := postMultipart(ctx, ctx.Config.Offload.SecondaryUrl, nil, "image", a.Filename(), a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrBackendUnreachable)
	}

	decoded := &secondaryResponse{}
	if status < 200 || status > 299 {
		reason := strings.TrimSpace(string(body))
		if jsonErr := json.Unmarshal(body, decoded); jsonErr == nil && decoded.Data.Error != "" {
			reason = decoded.Data.Error
		}
		return nil, fmt.Errorf("status %d: %s: %w", status, reason, common.ErrBackendRejected)
	}
	if err = json.Unmarshal(body, decoded); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrBackendRejected)
	}
	if decoded.Data.Link == "" {
		return nil, fmt.Errorf("response had no link: %w", common.ErrBackendRejected)
	}

	return &Result{Link: shortLink(ctx, decoded.Data.Link)}, nil
}

// shortLink derives the stable page link from a direct resource link,
// e.g. https://host/abc123.gif -> <base>/abc123.
func shortLink(ctx rcontext.RequestContext, direct string) string {
	id := path.Base(direct)
	if ext := path.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return strings.TrimSuffix(ctx.Config.Offload.SecondaryBase, "/") + "/" + id
}

func postMultipart(ctx rcontext.RequestContext, url string, fields map[string]string, fileField string, filename string, a *artifacts.Artifact) (int, []byte, error) {
	f, err := a.Open()
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	buf := &bytes.Buffer{}
	form := multipart.NewWriter(buf)
	for k, v := range fields {
		if err = form.WriteField(k, v); err != nil {
			return 0, nil, err
		}
	}
	part, err := form.CreateFormFile(fileField, filename)
	if err != nil {
		return 0, nil, err
	}
	if _, err = io.Copy(part, f); err != nil {
		return 0, nil, err
	}
	if err = form.Close(); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx.Context, http.MethodPost, url, buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	client := &http.Client{
		Timeout: time.Duration(ctx.Config.Offload.TimeoutSeconds) * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
