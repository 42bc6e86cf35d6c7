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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/suse-edge/diskplan/pkg/config"
)

func TestNewConfigDefaults(t *testing.T) {
	c := config.NewConfig()

	if c.Runner == nil {
		t.Fatalf("expected a default Runner")
	}
	if c.Mounter == nil {
		t.Fatalf("expected a default Mounter")
	}
	if c.SyncTimeout != config.DefaultSyncTimeout {
		t.Fatalf("expected default sync timeout, got %s", c.SyncTimeout)
	}
	if c.DryRun {
		t.Fatalf("expected DryRun to default false")
	}
}

func TestWithDryRun(t *testing.T) {
	c := config.NewConfig(config.WithDryRun(true))
	if !c.DryRun {
		t.Fatalf("expected DryRun to be set")
	}
}

func TestReadFileConfigOverridesTunables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diskplan.yaml")
	contents := "dry_run: true\nsync_timeout: 10s\nretry_attempts: 7\nretry_backoff: 1s\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture config: %s", err)
	}

	c := config.NewConfig()
	if err := config.ReadFileConfig(c, path); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if !c.DryRun {
		t.Fatalf("expected dry_run override to apply")
	}
	if c.SyncTimeout != 10*time.Second {
		t.Fatalf("expected sync_timeout override, got %s", c.SyncTimeout)
	}
	if c.RetryAttempts != 7 {
		t.Fatalf("expected retry_attempts override, got %d", c.RetryAttempts)
	}
	if c.RetryBackoff != time.Second {
		t.Fatalf("expected retry_backoff override, got %s", c.RetryBackoff)
	}
}

func TestReadFileConfigMissingFileIsNotAnError(t *testing.T) {
	c := config.NewConfig()
	if err := config.ReadFileConfig(c, filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("expected a missing config file to be silently ignored, got %s", err)
	}
}

func TestReadFileConfigEnvOverlayWithoutAFile(t *testing.T) {
	t.Setenv("DISKPLAN_DRY_RUN", "true")

	c := config.NewConfig()
	if err := config.ReadFileConfig(c, filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !c.DryRun {
		t.Fatalf("expected the DISKPLAN_DRY_RUN environment override to apply even with no config file")
	}
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected a missing .env file to be silently ignored, got %s", err)
	}
}
