package nightshiftcfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Load reads a configuration file and merges it over the defaults. Both YAML
// and JSON (with comments) documents are accepted; JSON documents are
// detected by their leading brace so legacy agents_config.json files keep
// working unchanged.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "{") {
		data = jsonc.ToJSON(data)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides selected settings from environment variables. Env values
// win over both defaults and file values.
func (r *Root) ApplyEnv() {
	if v := os.Getenv("NIGHTSHIFT_URL"); v != "" {
		r.URL = v
	}
	if v := os.Getenv("NIGHTSHIFT_TOKEN"); v != "" {
		r.Token = v
	}
	if v := os.Getenv("QUIET_HOURS_START"); v != "" {
		r.QuietHours.StartTime = v
	}
	if v := os.Getenv("QUIET_HOURS_END"); v != "" {
		r.QuietHours.EndTime = v
	}
	if v := os.Getenv("QUIET_HOURS_TIMEZONE"); v != "" {
		r.QuietHours.Timezone = v
	}
	if v := os.Getenv("GRACE_PERIOD_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.QuietHours.GracePeriodHours = n
		}
	}
	if strings.EqualFold(os.Getenv("DRY_RUN"), "true") {
		r.DryRun = true
	}
}
