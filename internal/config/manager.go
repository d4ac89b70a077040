// Package config loads and hot-reloads the engine's HedgeConfig from a YAML
// file plus environment overrides, using a viper+fsnotify+atomic.Value
// manager narrowed to the single validated value the engine's constructor
// consumes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/quantcore/hedge-engine/internal/hedging"
)

// Manager loads a hedging.HedgeConfig from file + HEDGE_-prefixed
// environment variables, validates it, and watches the file for
// changes, notifying registered callbacks with each reloaded, validated
// config.
type Manager struct {
	viper      *viper.Viper
	configPath string

	config atomic.Value // hedging.HedgeConfig

	watcher    *fsnotify.Watcher
	reloadChan chan struct{}

	callbacks []func(hedging.HedgeConfig)
	cbLock    sync.RWMutex

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New loads configPath (if present; defaults apply otherwise), validates
// the result, and starts a file watcher so a rewritten config file is
// picked up without a process restart.
func New(configPath string) (*Manager, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	m := &Manager{
		viper:      viper.New(),
		configPath: configPath,
		watcher:    watcher,
		reloadChan: make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
	}

	m.viper.SetConfigFile(configPath)
	m.viper.SetEnvPrefix("HEDGE")
	m.viper.AutomaticEnv()
	m.setDefaults()

	if err := m.loadConfig(); err != nil {
		watcher.Close()
		return nil, err
	}

	if err := m.startWatcher(); err != nil {
		watcher.Close()
		return nil, err
	}

	return m, nil
}

func (m *Manager) setDefaults() {
	def := hedging.DefaultConfig()
	m.viper.SetDefault("initial_position", def.InitialPosition)
	m.viper.SetDefault("default_hedge_ratio", def.DefaultHedgeRatio)
	m.viper.SetDefault("rehedge_threshold_bps", def.RehedgeThresholdBps)
	m.viper.SetDefault("max_position", def.MaxPosition)
	m.viper.SetDefault("enable_mvhr", def.EnableMVHR)
	m.viper.SetDefault("enable_mean_reversion", def.EnableMeanReversion)
	m.viper.SetDefault("statistics_window_hours", def.StatisticsWindowHours)
}

func (m *Manager) loadConfig() error {
	if _, err := os.Stat(m.configPath); err == nil {
		if err := m.viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := hedging.HedgeConfig{
		InitialPosition:       m.viper.GetFloat64("initial_position"),
		DefaultHedgeRatio:     m.viper.GetFloat64("default_hedge_ratio"),
		RehedgeThresholdBps:   m.viper.GetInt64("rehedge_threshold_bps"),
		MaxPosition:           m.viper.GetFloat64("max_position"),
		EnableMVHR:            m.viper.GetBool("enable_mvhr"),
		EnableMeanReversion:   m.viper.GetBool("enable_mean_reversion"),
		StatisticsWindowHours: m.viper.GetInt("statistics_window_hours"),
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	m.config.Store(cfg)
	m.notifyCallbacks(cfg)
	return nil
}

func (m *Manager) startWatcher() error {
	dir := filepath.Dir(m.configPath)
	if err := m.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	m.wg.Add(1)
	go m.watchLoop()
	return nil
}

func (m *Manager) watchLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Name == m.configPath && (event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create) {
				select {
				case m.reloadChan <- struct{}{}:
				default:
				}
			}
		case _, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
		case <-m.reloadChan:
			time.Sleep(100 * time.Millisecond) // debounce rapid writes
			m.loadConfig()
		}
	}
}

func (m *Manager) notifyCallbacks(cfg hedging.HedgeConfig) {
	m.cbLock.RLock()
	defer m.cbLock.RUnlock()
	for _, cb := range m.callbacks {
		go cb(cfg)
	}
}

// Config returns the current validated configuration.
func (m *Manager) Config() hedging.HedgeConfig {
	return m.config.Load().(hedging.HedgeConfig)
}

// OnReload registers a callback invoked (in its own goroutine) whenever the
// config file is rewritten and the new contents pass validation. An
// invalid rewrite is ignored by loadConfig's caller (nothing is logged);
// the last good config remains active.
func (m *Manager) OnReload(cb func(hedging.HedgeConfig)) {
	m.cbLock.Lock()
	defer m.cbLock.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// Close stops the watcher goroutine and releases the underlying fsnotify
// handle.
func (m *Manager) Close() error {
	close(m.stopCh)
	m.wg.Wait()
	return m.watcher.Close()
}

// DumpConfig renders the current configuration as YAML, for an operator
// inspecting what was actually loaded (including defaults and env
// overrides) rather than re-reading the source file.
func (m *Manager) DumpConfig() ([]byte, error) {
	return yaml.Marshal(m.Config())
}
