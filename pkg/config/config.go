/*
Copyright © 2022 SUSE LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config assembles the runtime knobs and collaborators the core
// needs -- logger, Runner, filesystem, and the handful of tunables that
// affect partitioning behavior -- the same way the teacher wires its own
// Config, trimmed to this core's concerns.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	sdkTypes "github.com/kairos-io/kairos-sdk/types"
	"github.com/spf13/viper"
	"github.com/twpayne/go-vfs/v5"
	mountutils "k8s.io/mount-utils"

	"github.com/suse-edge/diskplan/pkg/runner"
)

// envPrefix namespaces the environment-variable overlay, e.g.
// DISKPLAN_DRY_RUN=true.
const envPrefix = "DISKPLAN"

const (
	mountBinary = "/bin/mount"

	// DefaultSyncTimeout is the default for Config.SyncTimeout.
	DefaultSyncTimeout = 5 * time.Second
	// DefaultRetryAttempts is the default for Config.RetryAttempts.
	DefaultRetryAttempts = 3
	// DefaultRetryBackoff is the default for Config.RetryBackoff.
	DefaultRetryBackoff = 500 * time.Millisecond
)

// Config bundles the collaborators and tunables every package in this
// core is handed at construction time, mirroring the teacher's single
// shared Config struct.
type Config struct {
	Logger  sdkTypes.KairosLogger
	Runner  runner.Runner
	Fs      vfs.FS
	Mounter mountutils.Interface

	// SyncTimeout is loaded from defaults, file and environment. The commit
	// engine does not read it; its kernel re-read has no timeout.
	SyncTimeout time.Duration
	// RetryAttempts/RetryBackoff are loaded from defaults, file and
	// environment. The commit engine does not read them and retries
	// nothing: a failed WriteLabel ends the commit.
	RetryAttempts int
	RetryBackoff  time.Duration
	// DryRun, when true, stops the commit engine short of any write --
	// diff and validate still run in full.
	DryRun bool
}

// GenericOptions mirrors the teacher's option-function naming so readers
// moving between the two codebases recognize the pattern immediately.
type GenericOptions func(*Config)

func WithLogger(l sdkTypes.KairosLogger) GenericOptions { return func(c *Config) { c.Logger = l } }
func WithRunner(r runner.Runner) GenericOptions         { return func(c *Config) { c.Runner = r } }
func WithFs(fs vfs.FS) GenericOptions                   { return func(c *Config) { c.Fs = fs } }
func WithMounter(m mountutils.Interface) GenericOptions { return func(c *Config) { c.Mounter = m } }
func WithDryRun(dryRun bool) GenericOptions             { return func(c *Config) { c.DryRun = dryRun } }

// NewConfig builds a Config with the production defaults, then applies
// opts -- the same delayed-defaulting shape the teacher's NewConfig uses
// for Runner and CloudInitRunner.
func NewConfig(opts ...GenericOptions) *Config {
	log := sdkTypes.NewKairosLogger("diskplan", "info", false)
	if viper.GetBool("debug") {
		log.SetLevel("debug")
	}

	c := &Config{
		Logger:        log,
		Fs:            vfs.OSFS,
		SyncTimeout:   DefaultSyncTimeout,
		RetryAttempts: DefaultRetryAttempts,
		RetryBackoff:  DefaultRetryBackoff,
	}
	for _, o := range opts {
		o(c)
	}

	if c.Runner == nil {
		c.Runner = &runner.RealRunner{}
	}
	if l := c.Runner.GetLogger(); l == nil {
		c.Runner.SetLogger(&c.Logger)
	}
	if c.Mounter == nil {
		c.Mounter = mountutils.New(mountBinary)
	}

	return c
}

// LoadDotEnv loads an optional .env file at path into the process
// environment, the same best-effort way the teacher's scan() reads
// /etc/os-release through godotenv.Parse -- a missing file is not an
// error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ReadFileConfig loads tunable overrides from a YAML/TOML/JSON file at
// path via viper, then overlays any DISKPLAN_*-prefixed environment
// variable, applying the result on top of c's current values. A missing
// file is not an error -- defaults stand.
func ReadFileConfig(c *Config, path string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return err
		}
	}

	if v.IsSet("dry_run") {
		c.DryRun = v.GetBool("dry_run")
	}
	if v.IsSet("sync_timeout") {
		c.SyncTimeout = v.GetDuration("sync_timeout")
	}
	if v.IsSet("retry_attempts") {
		c.RetryAttempts = v.GetInt("retry_attempts")
	}
	if v.IsSet("retry_backoff") {
		c.RetryBackoff = v.GetDuration("retry_backoff")
	}
	return nil
}
