package config

import (
	"os"
	"path"
)

func NewDefaultConfig() *MediaKitConfig {
	return &MediaKitConfig{
		General: &GeneralConfig{
			LogDirectory: "-",
			LogColors:    false,
			JsonLogs:     false,
			LogLevel:     "info",
			SentryDsn:    "",
		},
		Artifacts: &ArtifactsConfig{
			TempDirectory: os.TempDir(),
			NamePrefix:    "mediakit_",
		},
		Fetch: &FetchConfig{
			TimeoutSeconds: 30,
			UserAgent:      "mediakit/1.0",
			MaxSizeBytes:   104857600, // 100mb
		},
		Downloads: &DownloadsConfig{
			BinaryPath:     "yt-dlp",
			CookieFile:     "",
			NumWorkers:     4,
			TimeoutSeconds: 600,
		},
		Transform: &TransformConfig{
			FontPath:    "", // built-in face when empty
			OverlayPath: path.Join("assets", "speechbubble.png"),
		},
		Delivery: &DeliveryConfig{
			MaxSizeBytes: 26214400, // 25mb
			OutDirectory: "out",
		},
		Offload: &OffloadConfig{
			PrimaryUrl:     "https://litterbox.catbox.moe/resources/internals/api.php",
			SecondaryUrl:   "https://api.imgur.com/3/image",
			SecondaryBase:  "https://imgur.com",
			RetentionHours: 72,
			TimeoutSeconds: 120,
		},
	}
}
