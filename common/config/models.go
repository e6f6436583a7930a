package config

type MediaKitConfig struct {
	General   *GeneralConfig   `yaml:"general"`
	Artifacts *ArtifactsConfig `yaml:"artifacts"`
	Fetch     *FetchConfig     `yaml:"fetch"`
	Downloads *DownloadsConfig `yaml:"downloads"`
	Transform *TransformConfig `yaml:"transform"`
	Delivery  *DeliveryConfig  `yaml:"delivery"`
	Offload   *OffloadConfig   `yaml:"offload"`
}

type GeneralConfig struct {
	LogDirectory string `yaml:"logDirectory"`
	LogColors    bool   `yaml:"logColors"`
	JsonLogs     bool   `yaml:"jsonLogs"`
	LogLevel     string `yaml:"logLevel"`
	SentryDsn    string `yaml:"sentryDsn"`
}

type ArtifactsConfig struct {
	TempDirectory string `yaml:"tempDirectory"`
	NamePrefix    string `yaml:"namePrefix"`
}

type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	UserAgent      string `yaml:"userAgent"`
	MaxSizeBytes   int64  `yaml:"maxSizeBytes"`
}

type DownloadsConfig struct {
	BinaryPath     string `yaml:"binaryPath"`
	CookieFile     string `yaml:"cookieFile"`
	NumWorkers     int    `yaml:"numWorkers"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type TransformConfig struct {
	FontPath    string `yaml:"fontPath"`
	OverlayPath string `yaml:"overlayPath"`
}

type DeliveryConfig struct {
	MaxSizeBytes int64  `yaml:"maxSizeBytes"`
	OutDirectory string `yaml:"outDirectory"`
}

type OffloadConfig struct {
	PrimaryUrl     string `yaml:"primaryUrl"`
	SecondaryUrl   string `yaml:"secondaryUrl"`
	SecondaryBase  string `yaml:"secondaryBase"`
	RetentionHours int    `yaml:"retentionHours"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}
