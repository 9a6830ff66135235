package sim

// DefenseConfig selects a defense policy and its parameters.
// Nil pointer fields mean "not set"; the policy constructor applies its own
// default. Fields that do not apply to the selected policy are ignored.
type DefenseConfig struct {
	Name string `yaml:"name"` // see ValidDefenses

	// lockout
	MaxFailures *int     `yaml:"max_failures"`
	LockoutTime *float64 `yaml:"lockout_time"`

	// backoff
	BaseDelay *float64 `yaml:"base_delay"`
	MaxDelay  *float64 `yaml:"max_delay"`

	// rate_limit, rate_limit_ip
	RefillRate *float64 `yaml:"refill_rate"`
	MaxTokens  *float64 `yaml:"max_tokens"`

	// hybrid
	IPRefillRate      *float64 `yaml:"ip_refill_rate"`
	IPMaxTokens       *float64 `yaml:"ip_max_tokens"`
	AccountRefillRate *float64 `yaml:"account_refill_rate"`
	AccountMaxTokens  *float64 `yaml:"account_max_tokens"`
}

// Merge returns a copy of c with every field set in override replacing c's value.
func (c DefenseConfig) Merge(override DefenseConfig) DefenseConfig {
	out := c
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.MaxFailures != nil {
		out.MaxFailures = override.MaxFailures
	}
	if override.LockoutTime != nil {
		out.LockoutTime = override.LockoutTime
	}
	if override.BaseDelay != nil {
		out.BaseDelay = override.BaseDelay
	}
	if override.MaxDelay != nil {
		out.MaxDelay = override.MaxDelay
	}
	if override.RefillRate != nil {
		out.RefillRate = override.RefillRate
	}
	if override.MaxTokens != nil {
		out.MaxTokens = override.MaxTokens
	}
	if override.IPRefillRate != nil {
		out.IPRefillRate = override.IPRefillRate
	}
	if override.IPMaxTokens != nil {
		out.IPMaxTokens = override.IPMaxTokens
	}
	if override.AccountRefillRate != nil {
		out.AccountRefillRate = override.AccountRefillRate
	}
	if override.AccountMaxTokens != nil {
		out.AccountMaxTokens = override.AccountMaxTokens
	}
	return out
}
