package download

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/rcontext"
)

// outputTemplate names the downloaded file after its uploader and title.
// The engine's ".150B" qualifier truncates the title to 150 bytes without
// splitting a multi-byte character, keeping the path under filesystem
// limits.
const outputTemplate = "%(uploader)s - %(title).150B.%(ext)s"

type engineMetadata struct {
	Uploader string `json:"uploader"`
	Title    string `json:"title"`
	Ext      string `json:"ext"`
	Filename string `json:"_filename"`
}

// runEngine invokes the external extraction engine with the request's
// format selector and a working directory it has exclusive use of. The
// engine picks the first satisfiable rung of the chain.
func runEngine(ctx rcontext.RequestContext, req Request, workDir string) (string, error) {
	args := []string{
		"--format", FormatSelector(req),
		"--output", filepath.Join(workDir, outputTemplate),
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--no-progress",
		"--no-check-certificates",
		"--color", "never",
		"--print-json",
	}
	if cookies := ctx.Config.Downloads.CookieFile; cookies != "" {
		args = append(args, "--cookies", cookies)
	}
	args = append(args, req.URL)

	cmd := exec.CommandContext(ctx.Context, ctx.Config.Downloads.BinaryPath, args...)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if ctx.Context.Err() != nil {
		return "", fmt.Errorf("%s: %w", ctx.Context.Err().Error(), common.ErrDownloadInterrupted)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s: %w", firstLine(msg), common.ErrExtractionFailed)
	}

	meta := &engineMetadata{}
	if err = json.Unmarshal(stdout.Bytes(), meta); err == nil && meta.Filename != "" {
		if _, statErr := os.Stat(meta.Filename); statErr == nil {
			return meta.Filename, nil
		}
	}

	// The reported filename can predate a merge step; fall back to the
	// working directory, which is exclusively ours.
	return findDownloaded(workDir)
}

func findDownloaded(workDir string) (string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", err.Error(), common.ErrExtractionFailed)
	}
	found := ""
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
			return "", fmt.Errorf("partial file %s: %w", name, common.ErrDownloadInterrupted)
		}
		if found == "" {
			found = filepath.Join(workDir, name)
		}
	}
	if found == "" {
		return "", fmt.Errorf("engine produced no file: %w", common.ErrExtractionFailed)
	}
	return found, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
