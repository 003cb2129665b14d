package config

const (
	defaultDataDir            = "~/.local/share/stitch"
	defaultLogDir             = "~/.local/share/stitch/logs"
	defaultInternalThreshold  = 80
	defaultVerifyThreshold    = 85
	defaultSharedTokenFloor   = 2
	defaultAmbiguityBand      = 5
	defaultMaxGroupingPasses  = 10
	defaultMinTemporaryDigits = 6
	defaultMaxTemporaryDigits = 10
	defaultVerifyConcurrency  = 8
	defaultLogLevel           = "info"
	defaultLogFormat          = "console"
)

func defaultBlacklist() []string {
	return []string{"UNKNOWN", "N/A", "NA", "NONE", "NIL"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Matching: Matching{
			InternalThreshold: defaultInternalThreshold,
			VerifyThreshold:   defaultVerifyThreshold,
			SharedTokenFloor:  defaultSharedTokenFloor,
			AmbiguityBand:     defaultAmbiguityBand,
			MaxGroupingPasses: defaultMaxGroupingPasses,
		},
		Classifier: Classifier{
			Blacklist:          defaultBlacklist(),
			MinTemporaryDigits: defaultMinTemporaryDigits,
			MaxTemporaryDigits: defaultMaxTemporaryDigits,
		},
		Engine: Engine{
			VerifyConcurrency: defaultVerifyConcurrency,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
