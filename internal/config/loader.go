package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix viper binds environment variables under, per
// cmd/quorum's SetEnvPrefix/AutomaticEnv pattern, narrowed to exactly the
// overlay role: env vars never replace the file format, only override
// individual fields at process-start time.
const envPrefix = "TRACKER"

// applyEnvOverlay overrides cfg's fields from TRACKER_* environment
// variables, if set. This is the only consumer of viper in this package —
// the config document itself is plain JSON, read and written directly.
func applyEnvOverlay(cfg *Config) *Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindBool(v, "skippermissions", &cfg.SkipPermissions)
	bindInt(v, "maxreviewrounds", &cfg.MaxReviewRounds)
	bindBool(v, "usagelimits.enabled", &cfg.UsageLimits.Enabled)
	bindInt(v, "usagelimits.minavailableinputtokens", &cfg.UsageLimits.MinAvailableInputTokens)
	bindInt(v, "usagelimits.minavailablerequests", &cfg.UsageLimits.MinAvailableRequests)
	bindFloat(v, "usagelimits.maxcostpersession", &cfg.UsageLimits.MaxCostPerSession)
	bindInt(v, "usagelimits.maxwaitminutes", &cfg.UsageLimits.MaxWaitMinutes)
	bindInt(v, "usagelimits.organizationtier", &cfg.UsageLimits.OrganizationTier)
	bindBool(v, "worktree.enabled", &cfg.Worktree.Enabled)
	bindBool(v, "worktree.copygitignored", &cfg.Worktree.CopyGitignored)
	bindBool(v, "worktree.autocleanuponcomplete", &cfg.Worktree.AutoCleanupOnComplete)

	return cfg
}

func bindBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func bindInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func bindFloat(v *viper.Viper, key string, dst *float64) {
	if v.IsSet(key) {
		*dst = v.GetFloat64(key)
	}
}

func setBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func setInt(dst *int, value string) error {
	i, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*dst = i
	return nil
}

func setFloat(dst *float64, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}
