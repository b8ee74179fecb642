/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"svgstitch/internal/storage"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		source string
		limit  int
		prune  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recent conversions, or show one by id",
		Args:  args(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, in []string) error {
			ctx := cmd.Context()
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if prune > 0 {
				n, err := st.PruneConversions(ctx, prune)
				if err != nil {
					return err
				}
				a.printf("removed %d entries\n", n)
				return nil
			}
			var list []storage.Conversion
			if len(in) == 1 {
				c, err := st.GetConversion(ctx, in[0])
				if err != nil {
					return fmt.Errorf("conversion %s: %w", in[0], err)
				}
				list = []storage.Conversion{c}
			} else {
				if source != "" {
					source = absPath(source)
				}
				if list, err = st.RecentConversions(ctx, source, limit); err != nil {
					return err
				}
			}
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tSTITCHES\tCOLORS\tTOOK\tSOURCE")
			for _, c := range list {
				status := c.Status
				if c.Error != "" {
					status += ": " + c.Error
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
					c.ID, c.StartedAt.Local().Format(time.DateTime), status, c.Stitches, c.Colors,
					c.Duration.Round(time.Millisecond), c.Source)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&source, "source", "", "only conversions of this input file")
	f.IntVar(&limit, "limit", 20, "maximum number of entries")
	f.IntVar(&prune, "prune", 0, "keep only the newest N entries and exit")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
