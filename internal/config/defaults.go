package config

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported feed sources.
const (
	FeedSourceExport = "export"
	FeedSourceHTTP   = "http"
)

// Supported transcription providers.
const (
	TranscriptionElevenLabs = "elevenlabs"
	TranscriptionWhisperX   = "whisperx"
	TranscriptionNone       = "none"
)

const (
	defaultStagingDir            = "~/.local/share/reelscribe/staging"
	defaultLibraryDir            = "~/.local/share/reelscribe/public"
	defaultLogDir                = "~/.local/share/reelscribe/logs"
	defaultStateDir              = "~/.local/share/reelscribe/state"
	defaultStorePath             = "~/.local/share/reelscribe/state/reelscribe.db"
	defaultStoreMaxOpenConns     = 4
	defaultFeedSource            = FeedSourceExport
	defaultFeedExportDir         = "~/.local/share/reelscribe/exports"
	defaultFeedPagesPerSecond    = 0.5
	defaultFeedTimeoutSeconds    = 30
	defaultPostURLTemplate       = "https://instagram.com/p/%s"
	defaultEmptyCaption          = "بدون کپشن"
	defaultMediaTimeoutSeconds   = 60
	defaultMediaMaxRetries       = 3
	defaultMediaUserAgent        = "reelscribe/dev"
	defaultTranscriptionProvider = TranscriptionElevenLabs
	defaultTranscriptionLanguage = "fa"
	defaultTranscriptionTimeout  = 300
	defaultElevenLabsBaseURL     = "https://api.elevenlabs.io/v1/speech-to-text"
	defaultElevenLabsModel       = "scribe_v1"
	defaultWhisperXModel         = "large-v3"
	defaultWhisperXVADMethod     = "silero"
	defaultLLMBaseURL            = "https://api.groq.com/openai/v1/chat/completions"
	defaultLLMModel              = "gemma2-9b-it"
	defaultLLMReferer            = "https://github.com/reelscribe/reelscribe"
	defaultLLMTitle              = "reelscribe"
	defaultLLMTimeoutSeconds     = 60
	defaultMinCleanLength        = 20
	defaultMaxGrowthFactor       = 2.0
	defaultTitleMinWords         = 4
	defaultTitleMaxWords         = 20
	defaultCleanTemperature      = 0.3
	defaultCleanMaxTokens        = 2000
	defaultTitleTemperature      = 0.7
	defaultTitleMaxTokens        = 150
	defaultDefaultFallbackTitle  = "املاک استثنایی در دبی - پست %d"
	defaultTargetCount           = 5
	defaultDelayMinSeconds       = 0.5
	defaultDelayMaxSeconds       = 1.5
	defaultMinScriptChars        = 50
	defaultScriptAlphabet        = "آابپتثجچحخدذرزژسشصضطظعغفقکگلمنوهی"
	defaultStagingMaxAgeHours    = 48
	defaultRelocateWorkers       = 4
	defaultAgentBio              = "مشاور املاک حرفه‌ای در دبی. برای آخرین به‌روزرسانی‌های املاک @%s را دنبال کنید."
	defaultAgentLocation         = "دبی، امارات متحده عربی"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
	defaultAPIBind               = "127.0.0.1:7490"
)

func defaultGenericTitleWords() []string {
	return []string{"املاک", "ویژه", "شماره"}
}

func defaultGenericTitlePatterns() []string {
	return []string{"املاک ویژه شماره", "پست ", "Post "}
}

func defaultFallbackTitles() []FallbackTitle {
	return []FallbackTitle{
		{Keyword: "آپارتمان", Template: "آپارتمان منحصر به فرد در دبی - پست %d"},
		{Keyword: "ویلا", Template: "ویلای لوکس در دبی - پست %d"},
		{Keyword: "دفتر", Template: "دفتر تجاری مدرن در دبی - پست %d"},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		Store: Store{
			Driver:       DriverSQLite,
			Path:         defaultStorePath,
			MaxOpenConns: defaultStoreMaxOpenConns,
		},
		Feed: Feed{
			Source:          defaultFeedSource,
			ExportDir:       defaultFeedExportDir,
			PagesPerSecond:  defaultFeedPagesPerSecond,
			TimeoutSeconds:  defaultFeedTimeoutSeconds,
			PostURLTemplate: defaultPostURLTemplate,
			EmptyCaption:    defaultEmptyCaption,
		},
		Media: Media{
			TimeoutSeconds: defaultMediaTimeoutSeconds,
			MaxRetries:     defaultMediaMaxRetries,
			UserAgent:      defaultMediaUserAgent,
		},
		Transcription: Transcription{
			Provider:          defaultTranscriptionProvider,
			Language:          defaultTranscriptionLanguage,
			TimeoutSeconds:    defaultTranscriptionTimeout,
			ElevenLabsBaseURL: defaultElevenLabsBaseURL,
			ElevenLabsModel:   defaultElevenLabsModel,
			WhisperXModel:     defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVADMethod,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Enrichment: Enrichment{
			Enabled:              true,
			MinCleanLength:       defaultMinCleanLength,
			MaxGrowthFactor:      defaultMaxGrowthFactor,
			TitleMinWords:        defaultTitleMinWords,
			TitleMaxWords:        defaultTitleMaxWords,
			GenericTitleWords:    defaultGenericTitleWords(),
			GenericTitlePatterns: defaultGenericTitlePatterns(),
			FallbackTitles:       defaultFallbackTitles(),
			DefaultFallbackTitle: defaultDefaultFallbackTitle,
			CleanTemperature:     defaultCleanTemperature,
			CleanMaxTokens:       defaultCleanMaxTokens,
			TitleTemperature:     defaultTitleTemperature,
			TitleMaxTokens:       defaultTitleMaxTokens,
		},
		Ingest: Ingest{
			TargetCount:     defaultTargetCount,
			DelayMinSeconds: defaultDelayMinSeconds,
			DelayMaxSeconds: defaultDelayMaxSeconds,
			MinScriptChars:  defaultMinScriptChars,
			ScriptAlphabet:  defaultScriptAlphabet,
			StagingMaxAge:   defaultStagingMaxAgeHours,
		},
		Relocate: Relocate{
			Enabled: true,
			Workers: defaultRelocateWorkers,
		},
		Agents: Agents{
			DefaultBio:      defaultAgentBio,
			DefaultLocation: defaultAgentLocation,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		API: API{
			Bind: defaultAPIBind,
		},
	}
}
