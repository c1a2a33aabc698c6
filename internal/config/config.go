package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/models"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	AgentBaseURL    string `mapstructure:"AGENT_BASE_URL"`
	AgentAPIKey     string `mapstructure:"AGENT_API_KEY"`
	SupportAgentID  string `mapstructure:"SUPPORT_AGENT_ID"`
	ApprovalAgentID string `mapstructure:"APPROVAL_AGENT_ID"`

	Greeting                 string  `mapstructure:"GREETING"`
	ConciergeCheckoutURL     string  `mapstructure:"CONCIERGE_CHECKOUT_URL"`
	AddonCheckoutURL         string  `mapstructure:"ADDON_CHECKOUT_URL"`
	SheetsURL                string  `mapstructure:"SHEETS_URL"`
	ProFundPercentage        float64 `mapstructure:"PRO_FUND_PERCENTAGE"`
	ProFundThreshold         float64 `mapstructure:"PRO_FUND_THRESHOLD"`
	ConversionCountThreshold int     `mapstructure:"CONVERSION_COUNT_THRESHOLD"`
	TimeWindowDays           int     `mapstructure:"TIME_WINDOW_DAYS"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("SUPPORT_AGENT_ID", "69988c23bf6ce2c35b435ab9")
	v.SetDefault("APPROVAL_AGENT_ID", "69988c245d2326ad4d26cbc6")

	v.SetDefault("GREETING", "Welcome to Corey Support! How can I help you today?")
	v.SetDefault("CONCIERGE_CHECKOUT_URL", "https://checkout.stripe.com/concierge-setup")
	v.SetDefault("ADDON_CHECKOUT_URL", "https://checkout.stripe.com/addon-pack")
	v.SetDefault("SHEETS_URL", "")
	v.SetDefault("PRO_FUND_PERCENTAGE", 20)
	v.SetDefault("PRO_FUND_THRESHOLD", 120)
	v.SetDefault("CONVERSION_COUNT_THRESHOLD", 3)
	v.SetDefault("TIME_WINDOW_DAYS", 14)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Settings extracts the runtime-editable application settings from the
// loaded configuration.
func (c Config) Settings() models.AppSettings {
	return models.AppSettings{
		Greeting:                 c.Greeting,
		ConciergeCheckoutURL:     c.ConciergeCheckoutURL,
		AddonCheckoutURL:         c.AddonCheckoutURL,
		SheetsURL:                c.SheetsURL,
		ProFundPercentage:        c.ProFundPercentage,
		ProFundThreshold:         c.ProFundThreshold,
		ConversionCountThreshold: c.ConversionCountThreshold,
		TimeWindowDays:           c.TimeWindowDays,
	}
}
