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

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/urfave/cli/v2"

	"github.com/suse-edge/diskplan/pkg/commit"
	"github.com/suse-edge/diskplan/pkg/config"
	"github.com/suse-edge/diskplan/pkg/disk"
	"github.com/suse-edge/diskplan/pkg/disks"
	"github.com/suse-edge/diskplan/pkg/filesystem"
	"github.com/suse-edge/diskplan/pkg/flag"
	"github.com/suse-edge/diskplan/pkg/partition"
	"github.com/suse-edge/diskplan/pkg/probe"
	"github.com/suse-edge/diskplan/pkg/table"
)

var editFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "mklabel",
		Usage: "request a fresh partition table of the given kind (gpt|msdos) before any other edit",
	},
	&cli.StringSliceFlag{
		Name:  "add",
		Usage: "add a partition: start:end:fs[:target], e.g. 2048:1026047:fat32:/boot/efi",
	},
	&cli.IntSliceFlag{
		Name:  "remove",
		Usage: "remove the partition numbered N",
	},
	&cli.StringFlag{
		Name:  "resize",
		Usage: "resize an existing partition: N:length",
	},
	&cli.StringFlag{
		Name:  "move",
		Usage: "move an existing partition: N:start",
	},
	&cli.StringFlag{
		Name:  "format",
		Usage: "reformat an existing partition: N:fs",
	},
}

func main() {
	app := &cli.App{
		Name:  "diskplan",
		Usage: "plan and commit disk partition layouts",
		Commands: []*cli.Command{
			probeCommand(),
			diffCommand(),
			commitCommand(),
			fstabCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "enumerate block devices and print the disk.Disk records found",
		Action: func(c *cli.Context) error {
			cfg := config.NewConfig()
			prober := probe.NewProber(table.NewDiskfsOpener(cfg.Logger), cfg.Fs, probe.WithLogger(cfg.Logger))

			found, err := prober.ProbeDevices(context.Background())
			if err != nil {
				return err
			}
			for _, d := range found {
				fmt.Println(litter.Sdump(d))
			}
			return nil
		},
	}
}

func diffCommand() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "probe a device, apply the requested edits in memory, and print the resulting DiskOps without committing",
		ArgsUsage: "<device-path>",
		Flags:     editFlags,
		Action: func(c *cli.Context) error {
			devicePath := c.Args().First()
			if devicePath == "" {
				return fmt.Errorf("device path required")
			}

			cfg := config.NewConfig()
			prober := probe.NewProber(table.NewDiskfsOpener(cfg.Logger), cfg.Fs, probe.WithLogger(cfg.Logger))

			source, err := prober.FromName(context.Background(), devicePath)
			if err != nil {
				return err
			}

			target := source.Clone()
			if err := applyEdits(c, target); err != nil {
				return err
			}

			if err := disk.ValidateLayout(source, target); err != nil {
				return err
			}
			ops := disk.Diff(source, target)
			fmt.Println(litter.Sdump(ops))
			return nil
		},
	}
}

func commitCommand() *cli.Command {
	return &cli.Command{
		Name:      "commit",
		Usage:     "probe a device, apply the requested edits, and commit them to the real partition table",
		ArgsUsage: "<device-path>",
		Flags:     editFlags,
		Action: func(c *cli.Context) error {
			devicePath := c.Args().First()
			if devicePath == "" {
				return fmt.Errorf("device path required")
			}

			cfg := config.NewConfig()
			opener := table.NewDiskfsOpener(cfg.Logger)
			prober := probe.NewProber(opener, cfg.Fs, probe.WithLogger(cfg.Logger))

			source, err := prober.FromName(context.Background(), devicePath)
			if err != nil {
				return err
			}
			target := source.Clone()
			if err := applyEdits(c, target); err != nil {
				return err
			}

			if cfg.DryRun {
				if err := disk.ValidateLayout(source, target); err != nil {
					return err
				}
				fmt.Println(litter.Sdump(disk.Diff(source, target)))
				return nil
			}

			engine := commit.NewEngine(opener, prober, cfg.Mounter,
				commit.WithLogger(cfg.Logger), commit.WithRunner(cfg.Runner), commit.WithFS(cfg.Fs))

			result, err := engine.Commit(context.Background(), target)
			if err != nil {
				return err
			}
			fmt.Println(litter.Sdump(result))
			return nil
		},
	}
}

func fstabCommand() *cli.Command {
	return &cli.Command{
		Name:  "fstab",
		Usage: "probe every device and render the fstab lines for every partition with a declared target",
		Action: func(c *cli.Context) error {
			cfg := config.NewConfig()
			prober := probe.NewProber(table.NewDiskfsOpener(cfg.Logger), cfg.Fs, probe.WithLogger(cfg.Logger))

			found, err := prober.ProbeDevices(context.Background())
			if err != nil {
				return err
			}

			var fleet disks.Disks
			for _, d := range found {
				fleet = append(fleet, d)
			}

			out, err := fleet.GenerateFstab(disks.UUIDResolverFromFS(cfg.Fs))
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

// applyEdits mutates target according to the --mklabel/--remove/--resize/
// --move/--format/--add flags, in that order, matching the order a
// caller would naturally build up a target layout: relabel first (it
// wipes everything else), then remove, then mutate, then add.
func applyEdits(c *cli.Context, target *disk.Disk) error {
	if kind := c.String("mklabel"); kind != "" {
		t, err := parseTable(kind)
		if err != nil {
			return err
		}
		target.Mklabel(t)
	}

	for _, n := range c.IntSlice("remove") {
		if err := target.RemovePartition(n); err != nil {
			return err
		}
	}

	if spec := c.String("resize"); spec != "" {
		n, length, err := parseNumAndUint(spec)
		if err != nil {
			return err
		}
		if err := target.ResizePartition(n, length); err != nil {
			return err
		}
	}

	if spec := c.String("move"); spec != "" {
		n, start, err := parseNumAndUint(spec)
		if err != nil {
			return err
		}
		if err := target.MovePartition(n, start); err != nil {
			return err
		}
	}

	if spec := c.String("format"); spec != "" {
		parts := strings.SplitN(spec, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("--format wants N:fs, got %q", spec)
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("--format partition number: %w", err)
		}
		fs, err := parseFilesystem(parts[1])
		if err != nil {
			return err
		}
		if err := target.FormatPartition(n, fs); err != nil {
			return err
		}
	}

	for _, spec := range c.StringSlice("add") {
		b, err := parseBuilder(spec)
		if err != nil {
			return err
		}
		if _, err := target.AddPartition(b); err != nil {
			return err
		}
	}

	return nil
}

func parseTable(s string) (disk.Table, error) {
	switch strings.ToLower(s) {
	case "gpt":
		return disk.Gpt, nil
	case "msdos":
		return disk.Msdos, nil
	default:
		return disk.NoTable, fmt.Errorf("unknown table kind %q, want gpt or msdos", s)
	}
}

func parseFilesystem(s string) (filesystem.Type, error) {
	switch strings.ToLower(s) {
	case "btrfs":
		return filesystem.Btrfs, nil
	case "exfat":
		return filesystem.Exfat, nil
	case "ext2":
		return filesystem.Ext2, nil
	case "ext3":
		return filesystem.Ext3, nil
	case "ext4":
		return filesystem.Ext4, nil
	case "f2fs":
		return filesystem.F2fs, nil
	case "fat16":
		return filesystem.Fat16, nil
	case "fat32":
		return filesystem.Fat32, nil
	case "ntfs":
		return filesystem.Ntfs, nil
	case "swap":
		return filesystem.Swap, nil
	case "xfs":
		return filesystem.Xfs, nil
	default:
		return 0, fmt.Errorf("unknown filesystem %q", s)
	}
}

func parseNumAndUint(spec string) (int, uint64, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want N:value, got %q", spec)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("partition number: %w", err)
	}
	v, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("value: %w", err)
	}
	return n, v, nil
}

// parseBuilder parses start:end:fs[:target] into a partition.Builder.
func parseBuilder(spec string) (partition.Builder, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 {
		return partition.Builder{}, fmt.Errorf("--add wants start:end:fs[:target], got %q", spec)
	}
	start, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return partition.Builder{}, fmt.Errorf("start sector: %w", err)
	}
	end, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return partition.Builder{}, fmt.Errorf("end sector: %w", err)
	}
	fs, err := parseFilesystem(parts[2])
	if err != nil {
		return partition.Builder{}, err
	}

	b := partition.NewBuilder(start, end, fs)
	if len(parts) > 3 && parts[3] != "" {
		b = b.WithTarget(parts[3])
	}
	if fs == filesystem.Swap {
		b = b.WithFlags(flag.Swap)
	}
	return b, nil
}
