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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmora/concurrency/logwriter"
	"github.com/dmora/concurrency/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options holds everything the commands read from flags and config.
type options struct {
	cfgFile   string // Path to config file
	logFile   string // Path to log file
	noLogging bool   // Turn off logging
	noColour  bool   // Turn off colour output

	model     runner.Model
	producers int
	consumers int

	v *viper.Viper
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// Execute adds all child commands to the root command sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

// NewRootCmd creates the runner command and its subcommands.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{v: viper.New()})
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concurrency <mode>",
		Short: "Concurrency problem runner",
		Long: `Concurrency problem runner.

Mode is one of:
  -d: Dining Philosophers solution
  -b: Potion Brewers solution
  -p: Producer/Consumer solution
      Required arguments for the Producer/Consumer solution:
      -n: Number of producers to instantiate
      -c: Number of consumers to instantiate

If multiple modes are specified, the last one in the command line overrides
the others. The run stops on interrupt, after --duration, or once the
--items, --meals or --rounds limit of the chosen mode is reached.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.initConfig(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.Usage()
		return err
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "config file (default is $HOME/.concurrency.yaml)")
	pf.StringVar(&o.logFile, "log", "", "path to log file (default is stdout)")
	pf.BoolVar(&o.noLogging, "no-logging", false, "disable logging")
	pf.BoolVar(&o.noColour, "no-colour", false, "disable colour output")

	f := cmd.Flags()
	addModeFlag(f, &o.model, runner.ProdCon, "prodcon", "p", "run the Producer/Consumer solution")
	addModeFlag(f, &o.model, runner.Diners, "diners", "d", "run the Dining Philosophers solution")
	addModeFlag(f, &o.model, runner.Brewers, "brewers", "b", "run the Potion Brewers solution")
	f.IntVarP(&o.producers, "producers", "n", 0, "number of producers (Producer/Consumer)")
	f.IntVarP(&o.consumers, "consumers", "c", 0, "number of consumers (Producer/Consumer)")

	def := runner.DefaultConfig()
	f.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	f.Int("items", 0, "Producer/Consumer: stop after this many items")
	f.Int("meals", 0, "Dining Philosophers: stop after this many meals")
	f.Int("rounds", 0, "Potion Brewers: stop after this many potions")
	f.Duration("max-sleep", def.MaxSleep, "Producer/Consumer: longest random pause before a put or get")
	f.Duration("think-min", def.ThinkMin, "Dining Philosophers: minimum thinking time")
	f.Duration("eat-min", def.EatMin, "Dining Philosophers: minimum eating time")
	f.Duration("brew-time", def.BrewTime, "Potion Brewers: minimum brewing time")
	f.Duration("jitter", def.Jitter, "random extra added to thinking, eating, brewing and supplying")
	for _, name := range []string{"duration", "items", "meals", "rounds", "max-sleep", "think-min", "eat-min", "brew-time", "jitter"} {
		o.v.BindPFlag(name, f.Lookup(name))
	}

	cmd.AddCommand(newProtocolCmd(o))
	return cmd
}

// initConfig reads in config file and ENV variables if set.
func (o *options) initConfig(out io.Writer) error {
	if o.cfgFile != "" { // enable ability to specify config file via flag
		o.v.SetConfigFile(o.cfgFile)
	} else {
		o.v.SetConfigName(".concurrency") // name of config file (without extension)
		o.v.AddConfigPath("$HOME")        // adding home directory as first search path
	}
	o.v.SetEnvPrefix("concurrency")
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	err := o.v.ReadInConfig()
	switch {
	case err == nil:
		fmt.Fprintln(out, "Using config file:", o.v.ConfigFileUsed())
	case o.cfgFile != "":
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// config assembles the run configuration from flags, environment and file.
func (o *options) config() runner.Config {
	return runner.Config{
		Model:     o.model,
		Producers: o.producers,
		Consumers: o.consumers,
		MaxSleep:  o.v.GetDuration("max-sleep"),
		ThinkMin:  o.v.GetDuration("think-min"),
		EatMin:    o.v.GetDuration("eat-min"),
		BrewTime:  o.v.GetDuration("brew-time"),
		Jitter:    o.v.GetDuration("jitter"),
		Duration:  o.v.GetDuration("duration"),
		Items:     o.v.GetInt("items"),
		Meals:     o.v.GetInt("meals"),
		Rounds:    o.v.GetInt("rounds"),
	}
}

func (o *options) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if cmd.Flags().NFlag() == 0 {
		printHeading(out)
		cmd.Help()
		return runner.ErrNoModel
	}

	c := o.config()
	if err := c.Validate(); err != nil {
		fmt.Fprintln(out, "No valid mode chosen or the parameters are incorrect.")
		fmt.Fprintln(out)
		cmd.Help()
		return err
	}
	if c.Model != runner.ProdCon && (cmd.Flags().Changed("producers") || cmd.Flags().Changed("consumers")) {
		fmt.Fprintf(out, "Solution set to %s, extra parameters passed will be ignored.\n", c.Model)
	}

	l := logwriter.NewFile(o.logFile, !o.noLogging, !o.noColour)
	if err := l.Create(); err != nil {
		return err
	}
	defer l.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runner.Run(ctx, c, l)
}

func printHeading(w io.Writer) {
	fmt.Fprintln(w, "Concurrency problem runner.")
	fmt.Fprintln(w)
}
