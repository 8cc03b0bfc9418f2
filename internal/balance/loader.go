package balance

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/balance.yaml
var defaultBalanceYAML []byte

var (
	defaultOnce sync.Once
	defaultCfg  Config
)

// Default возвращает встроенный баланс. Каждый вызов отдает независимую копию.
func Default() *Config {
	defaultOnce.Do(func() {
		if err := yaml.Unmarshal(defaultBalanceYAML, &defaultCfg); err != nil {
			panic(fmt.Sprintf("embedded balance.yaml is broken: %v", err))
		}
	})
	return clone(&defaultCfg)
}

// Load загружает баланс.
// Порядок поиска: customPath -> ~/.wasteland/configs/balance.yaml -> ./configs/balance.yaml -> встроенный.
func Load(customPath string) (*Config, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read balance %s: %w", customPath, err)
		}
		return parse(data, customPath)
	}

	if userPath := userConfigPath("balance.yaml"); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			if cfg, err := parse(data, userPath); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile("configs/balance.yaml"); err == nil {
		if cfg, err := parse(data, "configs/balance.yaml"); err == nil {
			return cfg, nil
		}
	}

	return Default(), nil
}

// Parse разбирает YAML-баланс из памяти.
func Parse(data []byte) (*Config, error) {
	return parse(data, "<memory>")
}

func parse(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse balance %s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid balance %s: %w", source, err)
	}
	return &cfg, nil
}

func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wasteland", "configs", filename)
}

func clone(c *Config) *Config {
	out := *c
	out.Items = append([]ItemDef(nil), c.Items...)
	out.Enemies = append([]EnemyDef(nil), c.Enemies...)
	out.Player.Inventory = append([]string(nil), c.Player.Inventory...)
	out.Player.Skills = make(map[string]int, len(c.Player.Skills))
	for k, v := range c.Player.Skills {
		out.Player.Skills[k] = v
	}
	return &out
}
