package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratlab/strategies"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Strategies, 5)

	strats, err := cfg.BuildStrategies()
	require.NoError(t, err)
	require.Len(t, strats, 5)
	assert.Equal(t, "TrendHunter", strats[0].Name())
	assert.Equal(t, 1000.0, strats[0].Broker().InitialBalance())
}

func TestSaveLoadYAMLRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Journal = JournalConfig{Type: "sqlite", DBPath: "journal.db"}
	cfg.Store = StoreConfig{Type: "file", Dir: "state"}
	cfg.Notify = NotifyConfig{Topic: "trades"}
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Strategies, got.Strategies)
	assert.Equal(t, "sqlite", got.Journal.Type)
	assert.Equal(t, "state", got.Store.Dir)
	assert.Equal(t, "trades", got.Notify.Topic)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"strategies": [{"name": "T", "policy": "trend", "balance": 500, "instruments": ["NVDA"]}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.Strategies, 1)
	assert.Equal(t, 500.0, cfg.Strategies[0].Balance)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "no strategies",
			cfg:  Config{},
			want: "at least one strategy",
		},
		{
			name: "missing policy",
			cfg:  Config{Strategies: []strategies.Config{{Name: "x"}}},
			want: "policy is required",
		},
		{
			name: "duplicate names",
			cfg: Config{Strategies: []strategies.Config{
				{Name: "x", Policy: "trend"},
				{Name: "x", Policy: "dca"},
			}},
			want: "duplicate name",
		},
		{
			name: "negative balance",
			cfg:  Config{Strategies: []strategies.Config{{Policy: "trend", Balance: -5}}},
			want: "balance must not be negative",
		},
		{
			name: "vault fraction out of range",
			cfg: Config{Strategies: []strategies.Config{
				{Policy: "trend", VaultInstrument: "GLD", VaultFraction: 1.5},
			}},
			want: "vault_fraction",
		},
		{
			name: "bad interval",
			cfg: Config{
				Strategies: []strategies.Config{{Policy: "trend"}},
				Live:       LiveConfig{Interval: "soon"},
			},
			want: "live.interval",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseInterval(t *testing.T) {
	d, err := LiveConfig{}.ParseInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	d, err = LiveConfig{Interval: "90s"}.ParseInterval()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}
