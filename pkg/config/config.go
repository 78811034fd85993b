// Package config holds the grayplug settings and their viper bindings.
package config

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/rs5lab/grayplug/pkg/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Prefix of the environment variables overriding settings, GRAYPLUG_PLUGIN_STRICT for plugin.strict
const EnvPrefix = "GRAYPLUG"

// Name of the config file searched in the home directory
const FileName = ".grayplug"

// A 32 bit address. Decodes from integers and from strings in any base strconv
// accepts (0x10000000, 0b..., 268435456) and is dumped in hex
type Address uint32

func (a Address) String() string {
	return utils.FormatUintHex(uint64(a), 8)
}

func (a Address) MarshalYAML() (any, error) {
	return a.String(), nil
}

func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	value, err := utils.ParseUint(node.Value, 32)
	if err != nil {
		return err
	}

	*a = Address(value)
	return nil
}

type PluginSettings struct {
	BaseAddress  Address `mapstructure:"base_address" yaml:"base_address"`
	SettleCycles int     `mapstructure:"settle_cycles" yaml:"settle_cycles"`
	Strict       bool    `mapstructure:"strict" yaml:"strict"`
	Function     string  `mapstructure:"function" yaml:"function"`
}

type DriverSettings struct {
	SpinCycles int `mapstructure:"spin_cycles" yaml:"spin_cycles"`
	PollLimit  int `mapstructure:"poll_limit" yaml:"poll_limit"`
}

type MemorySettings struct {
	ImageAddress Address `mapstructure:"image_address" yaml:"image_address"`
	// Zero places the results on the first page past the image
	ResultAddress Address `mapstructure:"result_address" yaml:"result_address"`
	UARTAddress   Address `mapstructure:"uart_address" yaml:"uart_address"`
}

type LogSettings struct {
	Level string `mapstructure:"level" yaml:"level"`
	// Optional file receiving a JSON copy of the log
	File string `mapstructure:"file" yaml:"file"`
	// Format of the stderr log, text or json
	Format string `mapstructure:"format" yaml:"format"`
}

type Settings struct {
	Plugin PluginSettings `mapstructure:"plugin" yaml:"plugin"`
	Driver DriverSettings `mapstructure:"driver" yaml:"driver"`
	Memory MemorySettings `mapstructure:"memory" yaml:"memory"`
	Log    LogSettings    `mapstructure:"log" yaml:"log"`
}

// Returns the settings used when no config file, environment or flag overrides them
func Default() Settings {
	return Settings{
		Plugin: PluginSettings{
			BaseAddress:  Address(mmio.DefaultBaseAddress),
			SettleCycles: mmio.DefaultSettleCycles,
			Strict:       false,
			Function:     mmio.Grayscale{}.Name(),
		},
		Driver: DriverSettings{
			SpinCycles: mmio.DefaultSettleCycles,
			PollLimit:  1000,
		},
		Memory: MemorySettings{
			ImageAddress:  0x00001000,
			ResultAddress: 0,
			UARTAddress:   0x80000000,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// Registers the default value of every setting key
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("plugin.base_address", uint32(defaults.Plugin.BaseAddress))
	v.SetDefault("plugin.settle_cycles", defaults.Plugin.SettleCycles)
	v.SetDefault("plugin.strict", defaults.Plugin.Strict)
	v.SetDefault("plugin.function", defaults.Plugin.Function)
	v.SetDefault("driver.spin_cycles", defaults.Driver.SpinCycles)
	v.SetDefault("driver.poll_limit", defaults.Driver.PollLimit)
	v.SetDefault("memory.image_address", uint32(defaults.Memory.ImageAddress))
	v.SetDefault("memory.result_address", uint32(defaults.Memory.ResultAddress))
	v.SetDefault("memory.uart_address", uint32(defaults.Memory.UARTAddress))
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.format", defaults.Log.Format)
}

// Binds the GRAYPLUG_ environment variables to the setting keys
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func addressDecodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(Address(0)) {
		return data, nil
	}

	switch value := data.(type) {
	case string:
		parsed, err := utils.ParseUint(value, 32)
		return Address(parsed), err
	case int:
		if value < 0 || !utils.FitsInBits(uint64(value), 32) {
			return nil, utils.MakeError(ErrInvalidSettings, "address %v does not fit in 32 bits", value)
		}
		return Address(value), nil
	case int64:
		if value < 0 || !utils.FitsInBits(uint64(value), 32) {
			return nil, utils.MakeError(ErrInvalidSettings, "address %v does not fit in 32 bits", value)
		}
		return Address(value), nil
	case uint64:
		if !utils.FitsInBits(value, 32) {
			return nil, utils.MakeError(ErrInvalidSettings, "address %v does not fit in 32 bits", value)
		}
		return Address(value), nil
	}

	return data, nil
}

// Decodes the settings from the viper instance and validates them
func Load(v *viper.Viper) (Settings, error) {
	var settings Settings

	err := v.Unmarshal(&settings, viper.DecodeHook(mapstructure.DecodeHookFuncType(addressDecodeHook)))
	if err != nil {
		return Settings{}, utils.MakeError(ErrInvalidSettings, "%v", err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// Checks the settings describe a consistent system
func (s *Settings) Validate() error {
	if _, err := mmio.NewRegisterMap(uint32(s.Plugin.BaseAddress)); err != nil {
		return utils.MakeError(ErrInvalidSettings, "plugin.base_address: %v", err)
	}

	if _, err := mmio.ParseFunction(s.Plugin.Function); err != nil {
		return utils.MakeError(ErrInvalidSettings, "plugin.function: %v", err)
	}

	if s.Plugin.SettleCycles < 0 {
		return utils.MakeError(ErrInvalidSettings, "plugin.settle_cycles must not be negative, got %v", s.Plugin.SettleCycles)
	}

	if s.Driver.SpinCycles < 0 {
		return utils.MakeError(ErrInvalidSettings, "driver.spin_cycles must not be negative, got %v", s.Driver.SpinCycles)
	}

	if s.Driver.PollLimit < 0 {
		return utils.MakeError(ErrInvalidSettings, "driver.poll_limit must not be negative, got %v", s.Driver.PollLimit)
	}

	for name, address := range map[string]Address{
		"memory.image_address":  s.Memory.ImageAddress,
		"memory.result_address": s.Memory.ResultAddress,
		"memory.uart_address":   s.Memory.UARTAddress,
	} {
		if address%4 != 0 {
			return utils.MakeError(ErrInvalidSettings, "%v %v is not word aligned", name, address)
		}
	}

	switch strings.ToLower(s.Log.Format) {
	case "json", "text":
	default:
		return utils.MakeError(ErrInvalidSettings, "log.format must be json or text, got %q", s.Log.Format)
	}

	return nil
}

// Returns the plugin configuration described by the settings
func (s *Settings) PluginConfig() (mmio.Config, error) {
	function, err := mmio.ParseFunction(s.Plugin.Function)
	if err != nil {
		return mmio.Config{}, err
	}

	return mmio.Config{
		SettleCycles: s.Plugin.SettleCycles,
		Strict:       s.Plugin.Strict,
		Function:     function,
	}, nil
}

// Writes the settings as YAML
func (s Settings) Dump(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(&s); err != nil {
		return fmt.Errorf("dumping settings: %w", err)
	}

	return encoder.Close()
}
