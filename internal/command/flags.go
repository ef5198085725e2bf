// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/cacheutil"
	"github.com/staranto/cerch/internal/manager"
	"github.com/staranto/cerch/internal/output"
)

// NewGlobalFlags returns the flags shared by every command. ns is the command
// name and namespaces the lookups in the config file at path.
func NewGlobalFlags(ns string, path string) (flags []cli.Flag) {
	flags = []cli.Flag{
		NewSnapshotFlag(ns, path),
		&cli.StringFlag{
			Name:    "columns",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of columns to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(path)),
				yaml.YAML("color", altsrc.StringSourcer(path)),
			),
			Value: output.IsTerminal(),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(path)),
				yaml.YAML("output", altsrc.StringSourcer(path)),
			),
			Value: output.FormatText,
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of columns to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", altsrc.StringSourcer(path)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(path)),
				yaml.YAML("titles", altsrc.StringSourcer(path)),
			),
			Value: false,
		},
	}

	return
}

// NewSnapshotFlag constructs the --snapshot flag. The default is resolved from
// CERCH_SNAPSHOT, then the config file, then the home directory.
func NewSnapshotFlag(ns string, path string) *cli.StringFlag {
	def, _ := cacheutil.DefaultSnapshotPath()
	flag := &cli.StringFlag{
		Name:    "snapshot",
		Aliases: []string{"S"},
		Usage:   "snapshot file backing the cache; a .zst suffix enables compression",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("CERCH_SNAPSHOT"),
		),
		Value: def,
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, path, flag)
}

// NewServeFlags returns the flags specific to the serve command.
func NewServeFlags(path string) []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "save-interval",
			Usage: "how often the cache is written to the snapshot",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CERCH_SAVE_INTERVAL"),
				yaml.YAML("serve.save-interval", altsrc.StringSourcer(path)),
			),
			Value: manager.DefaultSaveInterval,
			Validator: func(value time.Duration) error {
				return FlagValidators(value, PositiveDurationValidator)
			},
		},
		NameSpacedValueChainFlagFromConfigFile("serve", path, &cli.StringFlag{
			Name:    "mirror-bucket",
			Usage:   "S3 bucket the snapshot is mirrored to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CERCH_MIRROR_BUCKET")),
		}),
		NameSpacedValueChainFlagFromConfigFile("serve", path, &cli.StringFlag{
			Name:    "mirror-key",
			Usage:   "object key of the mirrored snapshot",
			Sources: cli.NewValueSourceChain(cli.EnvVar("CERCH_MIRROR_KEY")),
			Value:   "cerch/snapshot.zst",
		}),
		NameSpacedValueChainFlagFromConfigFile("serve", path, &cli.StringFlag{
			Name:    "mirror-region",
			Usage:   "AWS region of the mirror bucket",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AWS_REGION")),
		}),
		NameSpacedValueChainFlagFromConfigFile("serve", path, &cli.StringFlag{
			Name:  "mirror-profile",
			Usage: "AWS shared config profile used for the mirror",
		}),
		NameSpacedValueChainFlagFromConfigFile("serve", path, &cli.StringFlag{
			Name:  "mirror-endpoint",
			Usage: "custom S3 endpoint, e.g. MinIO",
		}),
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
