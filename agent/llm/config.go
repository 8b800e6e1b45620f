package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Restaurant-Concierge/pkg/openrouter"
)

// Config configures the two model calls of a turn. The decide call picks
// tools; the summarize call narrates their results. Each falls back to the
// shared model and temperature when its override is unset (negative
// temperature means unset).
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	DecideModel        string  `envconfig:"DECIDE_MODEL" split_words:"true"`
	SummaryModel       string  `envconfig:"SUMMARY_MODEL" split_words:"true"`
	DecideTemperature  float32 `envconfig:"DECIDE_TEMPERATURE" split_words:"true" default:"-1"`
	SummaryTemperature float32 `envconfig:"SUMMARY_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.MaxCompletionToken <= 0 {
		return fmt.Errorf("%w: max completion token must be positive", contractx.ErrValidation)
	}
	return nil
}

// Models lists the distinct model ids the roles resolve to.
func (c Config) Models() []string {
	seen := map[string]bool{}
	var out []string
	for _, role := range []contractx.ModelRole{contractx.ModelRoleDecide, contractx.ModelRoleSummarize} {
		name := c.OpenRouterFor(role).Model
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func (c Config) OpenRouterFor(role contractx.ModelRole) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case contractx.ModelRoleDecide:
		if v := strings.TrimSpace(c.DecideModel); v != "" {
			modelName = v
		}
		if c.DecideTemperature >= 0 {
			temp = c.DecideTemperature
		}
	case contractx.ModelRoleSummarize:
		if v := strings.TrimSpace(c.SummaryModel); v != "" {
			modelName = v
		}
		if c.SummaryTemperature >= 0 {
			temp = c.SummaryTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
