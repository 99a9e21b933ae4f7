package pricing

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

//go:embed tariff.yaml
var defaultTariffYAML []byte

// LoadTariff reads a tariff file, or the embedded default when path is
// empty, and validates it.
func LoadTariff(path string) (Tariff, error) {
	v := viper.New()
	if path == "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(defaultTariffYAML)); err != nil {
			return Tariff{}, fmt.Errorf("read embedded tariff: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Tariff{}, fmt.Errorf("read tariff %s: %w", path, err)
		}
	}

	var t Tariff
	if err := v.Unmarshal(&t); err != nil {
		return Tariff{}, fmt.Errorf("decode tariff: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tariff{}, err
	}
	return t, nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// DefaultTariff returns the embedded canonical tariff.
func DefaultTariff() Tariff {
	return Default().Tariff()
}

// Default returns the engine built from the embedded tariff. The embedded
// table is validated by tests, so a failure here is a build defect.
func Default() *Engine {
	defaultOnce.Do(func() {
		t, err := LoadTariff("")
		if err != nil {
			panic(fmt.Sprintf("pricing: embedded tariff: %v", err))
		}
		defaultEngine = &Engine{tariff: t}
	})
	return defaultEngine
}
