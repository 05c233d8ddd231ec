package config

// ReferralConfig carries the reward program knobs. The reward amount and the
// monthly sell limit are deployment inputs, not compiled constants.
type ReferralConfig struct {
	RewardAmount     float64 `yaml:"reward_amount"`
	MonthlySellLimit float64 `yaml:"monthly_sell_limit"`
	CodeLength       int     `yaml:"code_length"`
	MinWithdrawal    float64 `yaml:"min_withdrawal"`
}

func loadReferralConfig() *ReferralConfig {
	return &ReferralConfig{
		RewardAmount:     getEnvAsFloat64("REFERRAL_REWARD_AMOUNT", 0.04),
		MonthlySellLimit: getEnvAsFloat64("MONTHLY_SELL_LIMIT", 500000),
		CodeLength:       getEnvAsInt("REFERRAL_CODE_LENGTH", 8),
		MinWithdrawal:    getEnvAsFloat64("REFERRAL_MIN_WITHDRAWAL", 1),
	}
}
