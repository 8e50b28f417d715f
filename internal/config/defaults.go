package config

const (
	defaultLogDir            = "~/.local/share/dekereke/logs"
	defaultQuarantineDirName = "orphans"
	defaultExtension         = ".wav"
	defaultCandidateLimit    = 3
	defaultConfidenceFloor   = 0.5
	defaultContentField      = "Gloss"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:            defaultLogDir,
			QuarantineDirName: defaultQuarantineDirName,
		},
		Matching: Matching{
			CaseSensitive:    false,
			DefaultExtension: defaultExtension,
			AudioExtensions:  []string{defaultExtension},
			CandidateLimit:   defaultCandidateLimit,
			ConfidenceFloor:  defaultConfidenceFloor,
			ContentField:     defaultContentField,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Suffixes: map[string][]string{},
		Groups:   map[string][]string{},
		Rules:    map[string]Rule{},
	}
}
