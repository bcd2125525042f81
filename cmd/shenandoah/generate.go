// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/spf13/cobra"

	"github.com/thediveo/shenandoah/generator"
)

func newGenerateCmd() *cobra.Command {
	var opts generator.Options
	cmd := &cobra.Command{
		Use:     "generate NAME",
		Aliases: []string{"shen_spec"},
		Short:   "Generate a JavaScript spec and its HTML fixture",
		Example: `  shenandoah generate models/hat
  shenandoah shen_spec common_spec --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			opts.Out = cmd.OutOrStdout()
			_, err := generator.Generate(opts)
			return err
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress progress output")
	flags.BoolVarP(&opts.Force, "force", "f", false, "overwrite existing files")
	flags.StringVar(&opts.Root, "root", ".", "project root directory")
	return cmd
}
