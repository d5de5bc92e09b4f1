// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command mavc is a MAVLink dialect and telemetry-stream dumper, the
// counterpart to the teacher's pedumper: where pedumper parses a PE binary
// and prints its structures, mavc initializes a dialect Catalog and either
// describes it or decodes a captured byte stream against it.
package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/saferwall/mavlink"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dialectsDir  string
	filterConfig string
	verbose      bool
)

// messageFilter is the shape of the optional --filter-config YAML file: a
// list of message ids to include, and a list to exclude. Both may be given;
// include is applied before exclude, matching Catalog's own semantics.
type messageFilter struct {
	Include []uint32 `yaml:"include"`
	Exclude []uint32 `yaml:"exclude"`
}

func loadFilterConfig(path string) (*messageFilter, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mf messageFilter
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, err
	}
	return &mf, nil
}

func initCatalog(dialectName string) error {
	opts := &mavlink.Options{}
	if dialectsDir != "" {
		opts.Resolver = mavlink.FileResolver(dialectsDir)
	}

	if err := mavlink.Initialize(dialectName, opts); err != nil {
		return fmt.Errorf("initializing dialect %q: %w", dialectName, err)
	}

	if filterConfig == "" {
		return nil
	}
	mf, err := loadFilterConfig(filterConfig)
	if err != nil {
		return fmt.Errorf("reading filter config: %w", err)
	}
	if len(mf.Include) > 0 {
		if err := mavlink.IncludeMessages(mf.Include...); err != nil {
			return fmt.Errorf("applying include filter: %w", err)
		}
	}
	if len(mf.Exclude) > 0 {
		if err := mavlink.ExcludeMessages(mf.Exclude...); err != nil {
			return fmt.Errorf("applying exclude filter: %w", err)
		}
	}
	return nil
}

func lintDialect(cmd *cobra.Command, args []string) {
	if err := initCatalog(args[0]); err != nil {
		log.Fatal(err)
	}
	if err := mavlink.Describe(os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func dumpStream(cmd *cobra.Command, args []string) {
	dialectName := args[0]
	streamPath := args[1]

	if err := initCatalog(dialectName); err != nil {
		log.Fatal(err)
	}

	data, err := ioutil.ReadFile(streamPath)
	if err != nil {
		log.Fatalf("reading stream file %s: %v", streamPath, err)
	}

	offset := 0
	count := 0
	for offset < len(data) {
		f := &mavlink.Frame{}
		consumed, examined, ok := f.TryParseStream(data[offset:])
		if !ok {
			if verbose {
				log.Printf("stopped at offset %d: %s", offset, f.ErrorReason)
			}
			break
		}
		count++
		fmt.Printf("#%-4d off=%-8d v%d msg=%-4d sys=%-3d comp=%-3d seq=%-3d fields=%v\n",
			count, offset, f.ProtocolVersion, f.MessageID, f.SystemID, f.ComponentID, f.Sequence, f.Fields())
		offset += consumed
		if examined == 0 && consumed == 0 {
			break
		}
	}

	fmt.Printf("decoded %d frame(s) from %d byte(s)\n", count, len(data))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "mavc",
		Short: "A MAVLink v1/v2 dialect and telemetry-stream dumper",
		Long:  "mavc compiles a MAVLink XML dialect into a catalog and either describes it or decodes a captured telemetry stream against it, built for inspection and fuzz-corpus triage.",
	}
	rootCmd.PersistentFlags().StringVarP(&dialectsDir, "dialects-dir", "d", "", "directory containing dialect XML files (defaults to ./Dialects next to the binary)")
	rootCmd.PersistentFlags().StringVarP(&filterConfig, "filter-config", "f", "", "YAML file listing include/exclude message ids")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("mavc version 0.1.0")
		},
	}

	lintDialectCmd := &cobra.Command{
		Use:   "lint-dialect [dialect name]",
		Short: "Compile a dialect and print its message table",
		Args:  cobra.ExactArgs(1),
		Run:   lintDialect,
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [dialect name] [stream file]",
		Short: "Decode every frame found in a captured telemetry stream",
		Args:  cobra.ExactArgs(2),
		Run:   dumpStream,
	}

	rootCmd.AddCommand(versionCmd, lintDialectCmd, dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
