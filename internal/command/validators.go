// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/cerch/internal/output"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if s, ok := value.(string); ok && strings.HasPrefix(s, "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	valid := []string{output.FormatText, output.FormatJSON, output.FormatYAML}
	if s, ok := value.(string); ok && slices.Contains(valid, s) {
		return nil
	}
	return fmt.Errorf("must be one of %v", valid)
}

func PositiveDurationValidator(value any) error {
	if d, ok := value.(time.Duration); ok && d > 0 {
		return nil
	}
	return errors.New("must be a positive duration")
}

// ArgCountValidator returns a Before hook that insists on exactly n
// positional arguments.
func ArgCountValidator(n int) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if cmd.NArg() != n {
			return ctx, fmt.Errorf("%s requires %d argument(s), got %d\nusage: %s",
				cmd.Name, n, cmd.NArg(), cmd.UsageText)
		}
		return ctx, nil
	}
}
