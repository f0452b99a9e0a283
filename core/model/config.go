package model

import (
	"fmt"
	"sync"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// ReturnType は Predict / Transform の出力形式
type ReturnType string

const (
	// ReturnFrame はラベル付きの *frame.Frame を返す
	ReturnFrame ReturnType = "frame"
	// ReturnMatrix はラベルなしの *mat.Dense を返す
	ReturnMatrix ReturnType = "matrix"
)

// Config は推定器インスタンスの実行時設定
type Config struct {
	ReturnType ReturnType `json:"return_type"`
}

// Validate は設定値を検証する
func (c Config) Validate() error {
	switch c.ReturnType {
	case ReturnFrame, ReturnMatrix:
		return nil
	default:
		return errors.NewValueError("Config",
			fmt.Sprintf("return_type must be one of %q or %q, but found %q", ReturnFrame, ReturnMatrix, c.ReturnType))
	}
}

var (
	configMu      sync.RWMutex
	defaultConfig = Config{ReturnType: ReturnFrame}
)

// SetDefaultConfig はプロセス全体のデフォルト設定を変更する。
// 個別に SetConfig された推定器には影響しない。
func SetDefaultConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	defaultConfig = c
	return nil
}

// DefaultConfig は現在のデフォルト設定を返す
func DefaultConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return defaultConfig
}

// configHolder は推定器ごとの設定上書きを保持する
type configHolder struct {
	mu       sync.RWMutex
	override *Config
}

// GetConfig は推定器の有効な設定を返す
func (h *configHolder) GetConfig() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.override != nil {
		return *h.override
	}
	return DefaultConfig()
}

// SetConfig は推定器の設定を上書きする
func (h *configHolder) SetConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.override = &c
	return nil
}

func (h *configHolder) copyConfigTo(other *configHolder) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.override == nil {
		return
	}
	c := *h.override
	other.mu.Lock()
	other.override = &c
	other.mu.Unlock()
}
