package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, Default(), settings)
	assert.Equal(t, Address(0x10000000), settings.Plugin.BaseAddress)
	assert.Equal(t, 10, settings.Plugin.SettleCycles)
	assert.Equal(t, 1000, settings.Driver.PollLimit)
}

func TestLoad_ConfigFile(t *testing.T) {
	v := newViper()
	v.SetConfigType("yaml")

	require.NoError(t, v.ReadConfig(strings.NewReader(`
plugin:
  base_address: "0x20000000"
  settle_cycles: 3
  strict: true
  function: adder
memory:
  image_address: 0x4000
  result_address: 8192
log:
  level: debug
`)))

	settings, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, Address(0x20000000), settings.Plugin.BaseAddress)
	assert.Equal(t, 3, settings.Plugin.SettleCycles)
	assert.True(t, settings.Plugin.Strict)
	assert.Equal(t, "adder", settings.Plugin.Function)
	assert.Equal(t, Address(0x4000), settings.Memory.ImageAddress)
	assert.Equal(t, Address(0x2000), settings.Memory.ResultAddress)
	assert.Equal(t, "debug", settings.Log.Level)
	assert.Equal(t, Default().Driver, settings.Driver)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GRAYPLUG_PLUGIN_BASE_ADDRESS", "0x30000000")
	t.Setenv("GRAYPLUG_DRIVER_SPIN_CYCLES", "0")

	v := newViper()
	BindEnv(v)

	settings, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, Address(0x30000000), settings.Plugin.BaseAddress)
	assert.Equal(t, 0, settings.Driver.SpinCycles)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unaligned base", "plugin.base_address", "0x10000002"},
		{"window past 4GiB", "plugin.base_address", "0xFFFFFFF8"},
		{"address overflow", "memory.image_address", "0x100000000"},
		{"unknown function", "plugin.function", "sobel"},
		{"negative settle", "plugin.settle_cycles", -1},
		{"negative poll limit", "driver.poll_limit", -5},
		{"unaligned image", "memory.image_address", 0x1002},
		{"log format", "log.format", "xml"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := newViper()
			v.Set(test.key, test.value)

			_, err := Load(v)
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}

func TestSettings_PluginConfig(t *testing.T) {
	settings := Default()
	settings.Plugin.Function = "adder"
	settings.Plugin.Strict = true

	config, err := settings.PluginConfig()
	require.NoError(t, err)

	assert.Equal(t, mmio.Adder{}, config.Function)
	assert.True(t, config.Strict)
	assert.Equal(t, mmio.DefaultSettleCycles, config.SettleCycles)
}

func TestSettings_Dump(t *testing.T) {
	settings := Default()

	buffer := bytes.Buffer{}
	require.NoError(t, settings.Dump(&buffer))

	assert.Contains(t, buffer.String(), "base_address: \"0x10000000\"")
	assert.Contains(t, buffer.String(), "uart_address: \"0x80000000\"")

	var decoded Settings
	require.NoError(t, yaml.Unmarshal(buffer.Bytes(), &decoded))
	assert.Equal(t, settings, decoded)
}

func TestDefault_BaseAddress(t *testing.T) {
	assert.Equal(t, Address(mmio.DefaultBaseAddress), Default().Plugin.BaseAddress)

	registers, err := mmio.NewRegisterMap(uint32(Default().Plugin.BaseAddress))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1000000C), registers.Control())
}

func TestSettings_DumpReturnedValue(t *testing.T) {
	buffer := bytes.Buffer{}
	require.NoError(t, Default().Dump(&buffer))

	assert.Contains(t, buffer.String(), "function: grayscale")
	assert.Contains(t, buffer.String(), "settle_cycles: 10")
}
