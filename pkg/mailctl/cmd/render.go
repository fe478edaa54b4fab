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
)

func NewRenderCommand() *cobra.Command {
	var (
		dataFile  string
		tempDir   string
		framework bool
	)

	cmd := &cobra.Command{
		Use:   "render TEMPLATE",
		Short: "Render an HTML template to stdout",
		Long: `Render an HTML template with optional YAML data and print the result.

With --framework the template name is resolved under
<documentRoot><baseURL>/public/templates and rendered with
<documentRoot><baseURL>/tmp/templates as scratch directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if werr := rt.WriteMetrics(); err == nil {
					err = werr
				}
			}()

			data, err := loadTemplateData(dataFile)
			if err != nil {
				return err
			}
			composer, err := rt.NewComposer()
			if err != nil {
				return err
			}

			var out string
			if framework {
				out, err = composer.RenderFrameworkHTML(args[0], data)
			} else {
				if tempDir == "" {
					tempDir = rt.cfg.Templates.TempDir
				}
				out, err = composer.RenderHTML(rt.TemplatePath(args[0]), data, tempDir)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(rt.Writer(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "YAML file with template data")
	cmd.Flags().StringVar(&tempDir, "temp-dir", "", "Template scratch directory, overrides templates.tempDir")
	cmd.Flags().BoolVar(&framework, "framework", false, "Resolve the template under the framework document root")
	cmd.MarkFlagsMutuallyExclusive("framework", "temp-dir")

	return cmd
}
