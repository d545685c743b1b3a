// Package flags defines command-line flags shared by the binaries.
package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

// FlagDesc describes a flag that can be materialized as any cli.Flag type.
type FlagDesc struct {
	Name        string
	Category    string
	Aliases     []string
	Usage       string
	Envs        []string
	DefaultText string
}

func (fd *FlagDesc) DurationFlag(required bool, defaultValue time.Duration) *cli.DurationFlag {
	return &cli.DurationFlag{
		Name:        fd.Name,
		Category:    fd.Category,
		Aliases:     fd.Aliases,
		Usage:       fd.Usage,
		EnvVars:     fd.Envs,
		Required:    required,
		Value:       defaultValue,
		DefaultText: fd.DefaultText,
	}
}

func (fd *FlagDesc) IntFlag(required bool, defaultValue int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:        fd.Name,
		Category:    fd.Category,
		Aliases:     fd.Aliases,
		Usage:       fd.Usage,
		EnvVars:     fd.Envs,
		Required:    required,
		Value:       defaultValue,
		DefaultText: fd.DefaultText,
	}
}

// PositiveIntFlag is an IntFlag rejecting values less than one.
func (fd *FlagDesc) PositiveIntFlag(required bool, defaultValue int) *cli.IntFlag {
	f := fd.IntFlag(required, defaultValue)
	f.Action = func(_ *cli.Context, value int) error {
		if value < 1 {
			return fmt.Errorf("invalid value \"%d\" for flag --%s", value, fd.Name)
		}
		return nil
	}
	return f
}

func (fd *FlagDesc) StringFlag(required bool, defaultValue string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        fd.Name,
		Category:    fd.Category,
		Aliases:     fd.Aliases,
		Usage:       fd.Usage,
		EnvVars:     fd.Envs,
		Required:    required,
		Value:       defaultValue,
		DefaultText: fd.DefaultText,
	}
}

// ChoiceFlag is a StringFlag accepting only one of choices.
func (fd *FlagDesc) ChoiceFlag(required bool, defaultValue string, choices ...string) *cli.StringFlag {
	f := fd.StringFlag(required, defaultValue)
	f.Action = func(_ *cli.Context, value string) error {
		for _, choice := range choices {
			if value == choice {
				return nil
			}
		}
		return fmt.Errorf("invalid value \"%s\" for flag --%s, expected one of %v", value, fd.Name, choices)
	}
	return f
}

func (fd *FlagDesc) StringSliceFlag(required bool, defaultValues []string) *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:        fd.Name,
		Category:    fd.Category,
		Aliases:     fd.Aliases,
		Usage:       fd.Usage,
		EnvVars:     fd.Envs,
		Required:    required,
		Value:       cli.NewStringSlice(defaultValues...),
		DefaultText: fd.DefaultText,
	}
}

func (fd *FlagDesc) BoolFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        fd.Name,
		Category:    fd.Category,
		Aliases:     fd.Aliases,
		Usage:       fd.Usage,
		EnvVars:     fd.Envs,
		DefaultText: fd.DefaultText,
	}
}

func nonNegative(name string) func(*cli.Context, int) error {
	return func(_ *cli.Context, value int) error {
		if value < 0 {
			return fmt.Errorf("invalid value \"%d\" for flag --%s", value, name)
		}
		return nil
	}
}
