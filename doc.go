// Command concurrency runs one of three classic concurrency problems until
// it is interrupted or reaches its configured limit:
//
//	concurrency -p -n <producers> -c <consumers>   bounded-buffer producer/consumer
//	concurrency -d                                 dining philosophers
//	concurrency -b                                 potion brewers
//
// The protocol subcommand exports the synchronization protocol of a model as
// CFSMs, a Graphviz graph or a MiGo program.
package main
