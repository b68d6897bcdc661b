package config

const (
	defaultDataDir                  = "~/.local/share/epgdoctor"
	defaultLogDir                   = "~/.local/share/epgdoctor/logs"
	defaultFuzzyThreshold           = 85
	defaultApplyConfidenceThreshold = 70
	defaultCheckHours               = 12
	defaultScanWorkers              = 4
	defaultValidationPrefetch       = 2
	defaultDispatcharrTimeout       = 30
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Matching: Matching{
			IgnoreQualityTags:        true,
			IgnoreRegionalTags:       true,
			IgnoreGeographicTags:     true,
			IgnoreMiscTags:           true,
			FuzzyThreshold:           defaultFuzzyThreshold,
			ApplyConfidenceThreshold: defaultApplyConfidenceThreshold,
		},
		Scan: Scan{
			CheckHours:         defaultCheckHours,
			Workers:            defaultScanWorkers,
			ValidationPrefetch: defaultValidationPrefetch,
		},
		Dispatcharr: Dispatcharr{
			TimeoutSeconds: defaultDispatcharrTimeout,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
