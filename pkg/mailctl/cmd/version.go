/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easymvc/mailcomposer/pkg/mailctl/output"
	"github.com/easymvc/mailcomposer/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show mailctl version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetBuildInfo()

			// Get runtime if available (for custom writer), but don't fail if missing
			writer := cmd.OutOrStdout()
			if rt, _ := getRuntime(cmd); rt != nil {
				writer = rt.Writer()
			}

			format, err := output.ParseFormat(outputFormat, output.FormatText)
			if err != nil {
				return err
			}
			if format == output.FormatText {
				_, _ = fmt.Fprintf(writer, "mailctl %s\n", info)
				return nil
			}
			return output.WriteObject(writer, format, info)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: json, yaml")

	return cmd
}
