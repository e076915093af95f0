// pkg/profile/groups.go

package profile

// RuleKind selects how an option's value is derived at generation time.
type RuleKind int

const (
	// Literal emits the rule's value verbatim.
	Literal RuleKind = iota
	// BasePath emits an absolute path rooted at the platform base path,
	// joined with the platform separator.
	BasePath
	// SQLiteURL emits "sqlite:///" plus the base-rooted absolute path.
	SQLiteURL
	// VenvPython emits the interpreter path inside a virtual runtime
	// directory, following the platform's bin/Scripts convention.
	VenvPython
	// Numeric emits an integer literal.
	Numeric
	// Percent emits an integer literal with a trailing '%'.
	Percent
)

// Rule is a value-producing template for one option key.
type Rule struct {
	Kind RuleKind
	// Value holds the literal text or, for path-derived kinds, the
	// base-relative parts joined by '/'.
	Value string
	// Number holds the value for Numeric and Percent rules.
	Number int
}

// Option is one key plus its rule. Options within a group are ordered.
type Option struct {
	Key  string
	Rule Rule
}

// Group is a named, ordered template of options applied together.
type Group struct {
	Name    string
	Options []Option
}

// Groups returns the production option groups. The set is a fixed
// template: keys are unique across the union of all groups, and the
// generator treats any collision as an error rather than shadowing.
func Groups() []Group {
	return []Group{
		{
			Name: "PATHS",
			Options: []Option{
				{Key: "LOG_DIRECTORY", Rule: Rule{Kind: BasePath, Value: "logs"}},
				{Key: "DATA_DIRECTORY", Rule: Rule{Kind: BasePath, Value: "data"}},
				{Key: "TEMP_DIRECTORY", Rule: Rule{Kind: BasePath, Value: "temp"}},
				{Key: "DATABASE_URL", Rule: Rule{Kind: SQLiteURL, Value: "data/monay.db"}},
				{Key: "SD_MODEL_PATH", Rule: Rule{Kind: BasePath, Value: "models/stable-diffusion"}},
				{Key: "SD_CACHE_DIR", Rule: Rule{Kind: BasePath, Value: "cache/sd"}},
				{Key: "WAN_VENV_PATH", Rule: Rule{Kind: BasePath, Value: "wan_venv"}},
				{Key: "PYTHON_PATH", Rule: Rule{Kind: VenvPython, Value: "venv"}},
				{Key: "WAN_PYTHON_PATH", Rule: Rule{Kind: VenvPython, Value: "wan_venv"}},
				{Key: "AI_PYTHON_PATH", Rule: Rule{Kind: VenvPython, Value: "ai_service_venv"}},
			},
		},
		{
			Name: "RESOURCE LIMITS",
			Options: []Option{
				{Key: "CPU_LIMIT", Rule: Rule{Kind: Percent, Number: 50}},
				{Key: "MEMORY_LIMIT", Rule: Rule{Kind: Literal, Value: "4GB"}},
				{Key: "MAX_WORKERS", Rule: Rule{Kind: Numeric, Number: 2}},
				{Key: "THREAD_POOL_SIZE", Rule: Rule{Kind: Numeric, Number: 4}},
				{Key: "PROCESS_TIMEOUT", Rule: Rule{Kind: Numeric, Number: 7200}},
				{Key: "GENERATION_TIMEOUT_SECONDS", Rule: Rule{Kind: Numeric, Number: 3600}},
			},
		},
		{
			Name: "CPU OPTIMIZATION",
			Options: []Option{
				{Key: "WAN_CPU_MODE", Rule: Rule{Kind: Literal, Value: "true"}},
				{Key: "SD_CPU_MODE", Rule: Rule{Kind: Literal, Value: "true"}},
				{Key: "WAN_RESOLUTION", Rule: Rule{Kind: Literal, Value: "512x512"}},
				{Key: "SD_RESOLUTION", Rule: Rule{Kind: Literal, Value: "512x512"}},
				{Key: "WAN_INFERENCE_STEPS", Rule: Rule{Kind: Numeric, Number: 15}},
				{Key: "SD_INFERENCE_STEPS", Rule: Rule{Kind: Numeric, Number: 20}},
				{Key: "SD_GUIDANCE_SCALE", Rule: Rule{Kind: Literal, Value: "7.0"}},
				{Key: "MAX_VIDEOS_PER_CYCLE", Rule: Rule{Kind: Numeric, Number: 1}},
				{Key: "CONTENT_GENERATION_BATCH_SIZE", Rule: Rule{Kind: Numeric, Number: 1}},
			},
		},
		{
			Name: "SERVICE ENDPOINTS",
			Options: []Option{
				{Key: "WAN_API_URL", Rule: Rule{Kind: Literal, Value: "http://localhost:8000"}},
				{Key: "WAN_LOCAL_MODE", Rule: Rule{Kind: Literal, Value: "true"}},
				{Key: "RATE_LIMIT_DELAY", Rule: Rule{Kind: Numeric, Number: 120}},
				{Key: "MAX_CONCURRENT_UPLOADS", Rule: Rule{Kind: Numeric, Number: 1}},
				{Key: "UPLOAD_RETRY_ATTEMPTS", Rule: Rule{Kind: Numeric, Number: 3}},
				{Key: "UPLOAD_TIMEOUT_SECONDS", Rule: Rule{Kind: Numeric, Number: 1800}},
			},
		},
		{
			Name: "SECURITY",
			Options: []Option{
				{Key: "ALLOWED_HOSTS", Rule: Rule{Kind: Literal, Value: "localhost,127.0.0.1"}},
				{Key: "DEBUG", Rule: Rule{Kind: Literal, Value: "false"}},
				{Key: "SSL_VERIFY", Rule: Rule{Kind: Literal, Value: "true"}},
			},
		},
		{
			Name: "MONITORING",
			Options: []Option{
				{Key: "LOG_LEVEL", Rule: Rule{Kind: Literal, Value: "INFO"}},
				{Key: "LOG_ROTATION_DAYS", Rule: Rule{Kind: Numeric, Number: 30}},
				{Key: "HEALTH_CHECK_INTERVAL", Rule: Rule{Kind: Numeric, Number: 300}},
				{Key: "METRICS_ENABLED", Rule: Rule{Kind: Literal, Value: "true"}},
				{Key: "PERFORMANCE_MONITORING", Rule: Rule{Kind: Literal, Value: "true"}},
				{Key: "ERROR_REPORTING", Rule: Rule{Kind: Literal, Value: "true"}},
			},
		},
	}
}
