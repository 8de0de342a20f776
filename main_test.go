package main

import (
	"testing"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifiqr/internal/scan"
)

func TestRootFlags_ConfigFile(t *testing.T) {
	var o options
	fs := newRootFlagSet(&o)

	err := ff.Parse(fs, []string{"-config", "internal/config/testdata/wifiqr.toml", "-retries", "7"}, rootOptions()...)
	require.NoError(t, err)

	assert.Equal(t, "wlp3s0", o.Interface)
	assert.Equal(t, 7, o.Retries, "flags win over the config file")
	assert.Equal(t, 15*time.Second, o.Wait)
	assert.True(t, o.DeleteOnFailure)
	assert.Equal(t, scan.DefaultInterval, o.Interval)
	assert.Equal(t, "-", o.Device)
}

func TestRootFlags_ShortNames(t *testing.T) {
	var o options
	fs := newRootFlagSet(&o)

	err := ff.Parse(fs, []string{"-w", "-i", "wlan1", "-d", "/tmp/qr", "-v"})
	require.NoError(t, err)

	assert.True(t, o.Wifi)
	assert.Equal(t, "wlan1", o.Interface)
	assert.Equal(t, "/tmp/qr", o.Device)
	assert.True(t, o.Verbose)
}
