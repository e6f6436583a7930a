package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/utilitybelt/mediakit/artifacts"
	"github.com/utilitybelt/mediakit/common"
	"github.com/utilitybelt/mediakit/common/config"
	"github.com/utilitybelt/mediakit/common/logging"
	"github.com/utilitybelt/mediakit/common/rcontext"
	"github.com/utilitybelt/mediakit/common/version"
	"github.com/utilitybelt/mediakit/download"
	"github.com/utilitybelt/mediakit/pipelines/pipeline_deliver"
	"github.com/utilitybelt/mediakit/pool"
	"github.com/utilitybelt/mediakit/sources"
	"github.com/utilitybelt/mediakit/transform"
)

func main() {
	configPath := flag.String("config", "mediakit.yaml", "The path to the configuration")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	flag.Usage = printUsage
	flag.Parse()

	if *versionFlag {
		version.Print(false)
		return // exit 0
	}

	config.Path = *configPath
	c := config.Get()

	if err := logging.Setup(c.General.LogDirectory, c.General.LogColors, c.General.JsonLogs, c.General.LogLevel); err != nil {
		panic(err)
	}

	if c.General.SentryDsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: c.General.SentryDsn}); err != nil {
			logrus.Warn("Sentry setup failed: " + err.Error())
		}
	}

	pool.Init()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	err := runRequest(rcontext.Initial(), args)

	pool.Drain()
	sentry.Flush(2 * time.Second)
	if err != nil {
		logrus.Error(userMessage(err))
		os.Exit(1)
	}
}

// runRequest is one cooperative request: resolve and transform, deliver
// or offload, and release every artifact the request created on its
// single exit path.
func runRequest(ctx rcontext.RequestContext, args []string) error {
	scope := artifacts.NewScope()
	defer scope.Release(ctx)

	out, err := runOperation(ctx, args, scope)
	if err != nil {
		return err
	}

	outcome, err := pipeline_deliver.Execute(ctx, out, pipeline_deliver.DeliverToDir(ctx.Config.Delivery.OutDirectory))
	if err != nil {
		return err
	}

	if outcome.Delivered {
		fmt.Println(filepath.Join(ctx.Config.Delivery.OutDirectory, out.Filename()))
	} else if outcome.ExpiresAt.IsZero() {
		fmt.Println(outcome.Link)
	} else {
		fmt.Println(outcome.Link + " (expires " + outcome.ExpiresAt.Format(time.RFC3339) + ")")
	}
	return nil
}

func runOperation(ctx rcontext.RequestContext, args []string, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	op := args[0]
	rest := args[1:]

	switch op {
	case "to-gif":
		fs := flag.NewFlagSet("to-gif", flag.ExitOnError)
		url := fs.String("url", "", "The URL of the image to convert")
		file := fs.String("file", "", "A local image to convert")
		_ = fs.Parse(rest)
		a, err := resolveInput(ctx, *url, *file, scope)
		if err != nil {
			return nil, err
		}
		return transform.ToAnimation(ctx, a, scope)

	case "bubble":
		fs := flag.NewFlagSet("bubble", flag.ExitOnError)
		url := fs.String("url", "", "The URL of the image")
		file := fs.String("file", "", "A local image")
		height := fs.Int("height", 2, "Overlay height in tenths of the image height (1-10)")
		_ = fs.Parse(rest)
		a, err := resolveInput(ctx, *url, *file, scope)
		if err != nil {
			return nil, err
		}
		return transform.SpeechBubble(ctx, a, *height, scope)

	case "caption":
		fs := flag.NewFlagSet("caption", flag.ExitOnError)
		text := fs.String("text", "", "The caption text")
		url := fs.String("url", "", "The URL of the image or gif")
		file := fs.String("file", "", "A local image or gif")
		_ = fs.Parse(rest)
		if *text == "" {
			return nil, fmt.Errorf("caption text is required: %w", common.ErrInvalidParameter)
		}
		a, err := resolveInput(ctx, *url, *file, scope)
		if err != nil {
			return nil, err
		}
		return transform.Caption(ctx, a, *text, scope)

	case "download":
		fs := flag.NewFlagSet("download", flag.ExitOnError)
		url := fs.String("url", "", "The URL of the media to download")
		mode := fs.String("mode", "auto", "auto or audio")
		quality := fs.String("quality", "auto", "Video quality: auto, 144, 240, 360, 480, 720, 1080")
		audio := fs.String("audio", "auto", "Audio format: auto, mp3, wav, opus, ogg")
		_ = fs.Parse(rest)
		if *url == "" {
			return nil, fmt.Errorf("a URL is required: %w", common.ErrInvalidParameter)
		}
		return download.Execute(ctx, download.Request{
			URL:          *url,
			Mode:         download.Mode(*mode),
			VideoQuality: download.VideoQuality(*quality),
			AudioFormat:  download.AudioFormat(*audio),
		}, scope)

	default:
		printUsage()
		return nil, fmt.Errorf("unknown operation %q: %w", op, common.ErrInvalidParameter)
	}
}

func resolveInput(ctx rcontext.RequestContext, url string, file string, scope *artifacts.Scope) (*artifacts.Artifact, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), common.ErrUnsupportedFormat)
		}
		return sources.Resolve(ctx, sources.FromBytes(b, filepath.Base(file)), scope)
	}
	if url != "" {
		return sources.Resolve(ctx, sources.FromURL(url), scope)
	}
	return nil, fmt.Errorf("no image or URL provided: %w", common.ErrInvalidParameter)
}

// userMessage maps every fatal error to a short, specific message.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrUnresolvedReference):
		return "The referenced message was not resolved to an image or URL"
	case errors.Is(err, common.ErrFetchFailed):
		return "Failed to download media"
	case errors.Is(err, common.ErrUnsupportedFormat):
		return "That media is not a supported image format"
	case errors.Is(err, common.ErrExtractionFailed):
		return "Failed to extract media from that URL"
	case errors.Is(err, common.ErrDownloadInterrupted):
		return "The download was interrupted before it finished"
	case errors.Is(err, common.ErrDecodeFailed):
		return "The media could not be decoded"
	case errors.Is(err, common.ErrFontLoad):
		return "A required asset is missing"
	case errors.Is(err, common.ErrInvalidParameter):
		return "Invalid parameter: " + err.Error()
	case errors.Is(err, common.ErrUploadFailed):
		return "Failed to upload to every backend (the file is probably still too big)"
	case errors.Is(err, common.ErrMediaTooLarge):
		return "The media is too large"
	default:
		return err.Error()
	}
}

func printUsage() {
	fmt.Println("Usage: mediakit [flags] <operation> [operation flags]")
	fmt.Println("Operations: to-gif, bubble, caption, download")
	flag.PrintDefaults()
}
