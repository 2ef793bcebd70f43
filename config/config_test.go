package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, 10*time.Second, cfg.Tools.Timeout)
	require.Equal(t, 2, cfg.Tools.MaxRetries)
	require.False(t, cfg.Tools.UseTaskRouter)
	require.True(t, cfg.Performance.CacheEnabled)
	require.Equal(t, 3600*time.Second, cfg.Performance.CacheTTL)
	require.False(t, cfg.Observability.Enabled)
	require.Equal(t, 200, cfg.Observability.MaxEvents)
	require.Equal(t, 500, cfg.Observability.MaxPreview)
	require.True(t, cfg.Observability.IncludeInResponse)
	require.Equal(t, 100, cfg.Memory.ShortTermSize)
	require.Equal(t, 300*time.Second, cfg.Task.Timeout)
}

func TestLoadRequiresLLMProvider(t *testing.T) {
	clearResearchAgentEnv(t)
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearResearchAgentEnv(t)
	t.Setenv("RESEARCH_AGENT_LLM_PROVIDER", "anthropic")
	t.Setenv("RESEARCH_AGENT_LLM_API_KEY", "sk-test")
	t.Setenv("RESEARCH_AGENT_TOOLS_MAX_RETRIES", "5")
	t.Setenv("RESEARCH_AGENT_CACHE_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "anthropic", cfg.LLM.Provider)
	require.Equal(t, "sk-test", cfg.LLM.APIKey)
	require.Equal(t, 5, cfg.Tools.MaxRetries)
	require.False(t, cfg.Performance.CacheEnabled)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearResearchAgentEnv(t)
	t.Setenv("RESEARCH_AGENT_LLM_PROVIDER", "not-a-provider")
	_, err := config.Load()
	require.Error(t, err)
}

func clearResearchAgentEnv(t *testing.T) {
	t.Helper()
	for _, e := range os.Environ() {
		if len(e) > len("RESEARCH_AGENT_") && e[:len("RESEARCH_AGENT_")] == "RESEARCH_AGENT_" {
			os.Unsetenv(e[:indexByte(e, '=')])
		}
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
