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
	"fmt"
	"io"
	"os"

	"github.com/dmora/concurrency/diners"
	"github.com/dmora/concurrency/logwriter"
	"github.com/dmora/concurrency/protocol"
	"github.com/spf13/cobra"
)

func newProtocolCmd(o *options) *cobra.Command {
	var (
		format    string // Output format
		outfile   string // Path to output file
		producers int
		consumers int
		capacity  int
	)
	cmd := &cobra.Command{
		Use:   "protocol {prodcon|diners|brewers}",
		Short: "Export the synchronization protocol of a model",
		Long: `Export the synchronization protocol of a model

The workers and the shared state they synchronize on (locks, flags and the
bounded buffer) are written as communicating finite state machines (cfsm),
a Graphviz topology (dot) or a MiGo program (migo), ready for external
deadlock and liveness checkers.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"prodcon", "diners", "brewers"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var p *protocol.Protocol
			switch args[0] {
			case "prodcon":
				p = protocol.ProdCon(producers, consumers, capacity)
			case "diners":
				p = protocol.Diners(diners.Seats)
			case "brewers":
				p = protocol.Brewers()
			default:
				return fmt.Errorf("unknown model %q (expects prodcon, diners or brewers)", args[0])
			}

			l := logwriter.New(cmd.ErrOrStderr(), !o.noLogging, !o.noColour)
			if err := l.Create(); err != nil {
				return err
			}
			defer l.Cleanup()

			out, err := renderProtocol(p, format, l)
			if err != nil {
				return err
			}
			if outfile != "" {
				f, err := os.Create(outfile)
				if err != nil {
					return err
				}
				defer f.Close()
				_, err = io.WriteString(f, out)
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "cfsm", "output format: cfsm, dot or migo")
	cmd.Flags().StringVar(&outfile, "output", "", "output file (default is stdout)")
	cmd.Flags().IntVarP(&producers, "producers", "n", 1, "producers in the prodcon protocol")
	cmd.Flags().IntVarP(&consumers, "consumers", "c", 1, "consumers in the prodcon protocol")
	cmd.Flags().IntVar(&capacity, "capacity", 2, "buffer capacity in the prodcon protocol")
	return cmd
}

func renderProtocol(p *protocol.Protocol, format string, l *logwriter.Writer) (string, error) {
	logger := l.Logger("protocol: ")
	switch format {
	case "cfsm":
		sys, err := protocol.NewCFSMs(p)
		if err != nil {
			return "", err
		}
		sys.Summary(l)
		return sys.Sys.String(), nil
	case "dot":
		out, err := protocol.Dot(p)
		if err != nil {
			return "", err
		}
		logger.Printf("%s: %d roles, %d resources", p.Name, len(p.Roles), len(p.Resources))
		return out, nil
	case "migo":
		prog, err := protocol.MiGo(p)
		if err != nil {
			return "", err
		}
		logger.Printf("%s: MiGo program generated", p.Name)
		return prog.String(), nil
	}
	return "", fmt.Errorf("unknown format %q (expects cfsm, dot or migo)", format)
}
