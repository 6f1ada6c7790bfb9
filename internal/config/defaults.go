package config

const (
	defaultDownloadDir       = "~/.local/share/stockpile/downloads"
	defaultArchiveDir        = "~/.local/share/stockpile/archives"
	defaultReportDir         = "~/.local/share/stockpile/reports"
	defaultLogDir            = "~/.local/share/stockpile/logs"
	defaultWorksheet         = "Sheet1"
	defaultMaxConcurrentJobs = 5
	defaultTimeoutSeconds    = 10
	defaultArchiverBinary    = "zip"
	defaultSMTPPort          = 25
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			ArchiveDir:  defaultArchiveDir,
			ReportDir:   defaultReportDir,
			LogDir:      defaultLogDir,
		},
		Manifest: Manifest{
			Worksheet: defaultWorksheet,
		},
		Fetch: Fetch{
			MaxConcurrentJobs: int64(defaultMaxConcurrentJobs),
			TimeoutSeconds:    defaultTimeoutSeconds,
		},
		Archiver: Archiver{
			Binary: defaultArchiverBinary,
		},
		Mail: Mail{
			SMTPPort: defaultSMTPPort,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
