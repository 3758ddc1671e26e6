package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	OAuth    OAuthConfig    `mapstructure:"oauth"    validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	BaseURL  string `mapstructure:"base_url"  validate:"required,url"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains session token settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// OAuthConfig contains the Google identity-provider settings.
type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"     validate:"required"`
	GoogleClientSecret string `mapstructure:"google_client_secret" validate:"required"`
	// RedirectURL defaults to BaseURL + "/auth/google/callback" when empty.
	RedirectURL string `mapstructure:"redirect_url"`
}

// MailConfig contains outbound SMTP settings. When Host is empty, outgoing
// invitation mail is logged instead of sent.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	SiteName string `mapstructure:"site_name"`
}

// LLMConfig contains the task-suggestion model settings. When the API key is
// empty, the suggestion endpoint is disabled.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds"`
}
