package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/classweave/classweave/pkg/action/process"
	"github.com/classweave/classweave/pkg/processor"
)

func init() {
	rootCmd.AddCommand(NewProcessCommand())
}

func NewProcessCommand() *cobra.Command {
	var (
		options    = processor.NewOptions()
		runVersion string
	)

	// processCmd rewrites annotated classes under the class directory
	var processCmd = &cobra.Command{
		Use:   "process",
		Short: "inject generated members into annotated classes",
		Long:  "Scan a compiler output directory for annotated classes and rewrite each class file in place with the requested generated members",
		Run: func(c *cobra.Command, args []string) {
			report, err := process.Run(options, runVersion, slog.Default())
			if report != nil {
				slog.Default().Info("run finished",
					"classes", len(report.Classes), "skipped", report.Skipped, "failed", report.Failed)
			}
			if err != nil {
				slog.Default().Error("processing failed", "error", err)
				os.Exit(1)
			}
		},
	}
	processCmd.PersistentFlags().StringVarP(&options.ClassDir, "class-directory", "i", ".", "compiler output directory to scan")
	processCmd.PersistentFlags().StringSliceVarP(&options.Packages, "annotation-packages", "p", []string{}, "annotation packages to honor, ex: lombok (empty honors any)")
	processCmd.PersistentFlags().BoolVarP(&options.DryRun, "dry-run", "n", false, "transform but do not write class files back")
	processCmd.PersistentFlags().StringVarP(&options.ManifestPath, "manifest", "m", "", "manifest file recording run reports")
	processCmd.PersistentFlags().StringVar(&runVersion, "run-version", "0", "version label for the recorded run")

	return processCmd
}
