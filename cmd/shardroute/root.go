/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 *  File author: Anders Xiao
 */

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/endink/shardroute/config"
	"github.com/endink/shardroute/engine"
	"github.com/endink/shardroute/logging"
	"github.com/endink/shardroute/parser"
	"github.com/endink/shardroute/routing"
	"github.com/endink/shardroute/telemetry"
	"github.com/spf13/cobra"
)

const metricsPeriod = time.Second

type options struct {
	configFiles []string
	params      []string
	format      string
	logFormat   string
	metrics     bool
	hintDb      []string
	hintTable   []string
	hintDbOnly  bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "shardroute",
		Short:         "Route and rewrite SQL statements with a sharding rule",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			f, err := logging.ParseLogFormat(opts.logFormat)
			if err != nil {
				return err
			}
			logging.Configure(f, cmd.ErrOrStderr())
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringSliceVarP(&opts.configFiles, "config", "c", nil, "configuration files, later files override earlier ones (default: "+strings.Join(config.DefaultConfigFileLocations(), ", ")+")")
	flags.StringVarP(&opts.format, "format", "f", formatYAML, "output format, yaml or json")
	flags.StringVar(&opts.logFormat, "log-format", "plain", "log format, color, plain or json")

	root.AddCommand(newRouteCommand(opts), newExplainCommand(opts), newCheckCommand(opts))
	return root
}

func addStatementFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.params, "param", "p", nil, "statement parameter in placeholder order, numbers are passed as numbers")
	flags.StringSliceVar(&opts.hintDb, "hint-db", nil, "database sharding hint values")
	flags.StringSliceVar(&opts.hintTable, "hint-table", nil, "table sharding hint values")
	flags.BoolVar(&opts.hintDbOnly, "hint-db-only", false, "route by database hint values only")
}

func newRouteCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route <sql>",
		Short: "Route a statement and print the rewritten SQL of every execution unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, stmt, err := prepare(opts, args[0])
			if err != nil {
				return err
			}
			ctx := context.Background()
			if opts.metrics {
				if err = telemetry.Start(ctx, telemetry.WithWriter(cmd.ErrOrStderr()), telemetry.WithCollectPeriod(metricsPeriod)); err != nil {
					return err
				}
				defer telemetry.Shutdown()
			}
			ec, err := eng.Execute(ctx, stmt)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.format, newExecutionView(ec))
		},
	}
	addStatementFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print route metrics and traces to stderr")
	return cmd
}

func newExplainCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <sql>",
		Short: "Show the route of a statement without generating keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, stmt, err := prepare(opts, args[0])
			if err != nil {
				return err
			}
			ex, err := eng.Explain(context.Background(), stmt)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.format, newExplainView(ex))
		},
	}
	addStatementFlags(cmd, opts)
	return cmd
}

func newCheckCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print the loaded rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(opts)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), opts.format, newRuleView(settings))
		},
	}
}

func loadSettings(opts *options) (*config.Settings, error) {
	var m config.Manager
	var err error
	if len(opts.configFiles) > 0 {
		m, err = config.NewManagerFromFiles(opts.configFiles...)
	} else {
		m, err = config.NewManager()
	}
	if err != nil {
		return nil, err
	}
	return m.GetSettings(), nil
}

func prepare(opts *options, sql string) (*engine.Engine, *engine.Statement, error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(settings.Rule)
	if err != nil {
		return nil, nil, err
	}
	stmt, err := parser.Parse(sql, parseParams(opts.params), settings.Rule)
	if err != nil {
		return nil, nil, err
	}
	if len(opts.hintDb) > 0 || len(opts.hintTable) > 0 || opts.hintDbOnly {
		stmt.Hint = &routing.Hint{
			DatabaseShardingOnly: opts.hintDbOnly,
			DatabaseValues:       parseParams(opts.hintDb),
			TableValues:          parseParams(opts.hintTable),
		}
	}
	return eng, stmt, nil
}

//parseParams passes integers as int64 and decimals as float64, 'NULL' is nil and everything else stays text
func parseParams(texts []string) []interface{} {
	if len(texts) == 0 {
		return nil
	}
	values := make([]interface{}, len(texts))
	for i, text := range texts {
		values[i] = parseParam(text)
	}
	return values
}

func parseParam(text string) interface{} {
	if strings.EqualFold(text, "null") {
		return nil
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return v
	}
	return text
}

func unsupportedFormat(format string) error {
	return fmt.Errorf("unsupported output format '%s', use %s or %s", format, formatYAML, formatJSON)
}
