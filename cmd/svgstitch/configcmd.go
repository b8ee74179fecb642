/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"svgstitch/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	path := func() (string, error) {
		if a.cfgPath != "" {
			return a.cfgPath, nil
		}
		return config.ConfigPath()
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  args(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			p, err := path()
			if err != nil {
				return err
			}
			a.printf("%s\n", p)
			return nil
		},
	}, &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  args(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			b, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = a.out.Write(b)
			return err
		},
	}, &cobra.Command{
		Use:   "keys",
		Short: "List the settable keys",
		Args:  args(cobra.NoArgs),
		Run: func(*cobra.Command, []string) {
			for _, k := range config.Keys() {
				v, _ := a.cfg.Get(k)
				if env, ok := config.EnvOverrideFor(k); ok {
					a.printf("%s = %s (from %s)\n", k, v, env)
					continue
				}
				a.printf("%s = %s\n", k, v)
			}
		},
	}, &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(_ *cobra.Command, in []string) error {
			v, err := a.cfg.Get(in[0])
			if err != nil {
				return &usageError{err: err}
			}
			a.printf("%s\n", v)
			return nil
		},
	}, &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the config file",
		Long:  "Set stores a value in the config file. Use palette.<name> to add a named thread color.",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(_ *cobra.Command, in []string) error {
			p, err := path()
			if err != nil {
				return err
			}
			// Start from the file alone so env overrides are not persisted.
			cfg, err := loadFileOnly(p)
			if err != nil {
				return err
			}
			if err := cfg.Set(in[0], in[1]); err != nil {
				return &usageError{err: err}
			}
			if err := cfg.Validate(); err != nil {
				return &usageError{err: err}
			}
			if err := config.Save(cfg, p); err != nil {
				return err
			}
			a.printf("%s = %s\n", in[0], in[1])
			if env, ok := config.EnvOverrideFor(in[0]); ok {
				a.printf("note: %s currently overrides this setting\n", env)
			}
			return nil
		},
	})
	return cmd
}

// loadFileOnly loads path with every environment override cleared.
func loadFileOnly(path string) (config.AppConfig, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
