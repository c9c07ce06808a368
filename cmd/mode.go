// Copyright © 2026 The concurrency Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"strconv"

	"github.com/dmora/concurrency/runner"
	"github.com/spf13/pflag"
)

// modeFlag is a boolean flag that selects one model. All mode flags share a
// target, and pflag sets them in command line order, so the last one wins.
type modeFlag struct {
	target *runner.Model
	mode   runner.Model
}

func (f *modeFlag) String() string { return strconv.FormatBool(f.target != nil && *f.target == f.mode) }

func (f *modeFlag) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*f.target = f.mode
	} else if *f.target == f.mode {
		*f.target = runner.None
	}
	return nil
}

func (f *modeFlag) Type() string { return "bool" }

func addModeFlag(fs *pflag.FlagSet, target *runner.Model, mode runner.Model, name, shorthand, usage string) {
	flag := fs.VarPF(&modeFlag{target: target, mode: mode}, name, shorthand, usage)
	flag.NoOptDefVal = "true"
}
