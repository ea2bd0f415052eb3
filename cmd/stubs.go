package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/classweave/classweave/pkg/action/snapshot"
	"github.com/classweave/classweave/pkg/action/stubs"
	"github.com/classweave/classweave/pkg/processor"
)

func init() {
	rootCmd.AddCommand(NewStubsCommand())
	rootCmd.AddCommand(NewDiffCommand())
}

func NewStubsCommand() *cobra.Command {
	var options = processor.NewOptions()

	var stubsCmd = &cobra.Command{
		Use:   "stubs",
		Short: "generate Go mirror stubs for annotated classes",
		Run: func(c *cobra.Command, args []string) {
			if _, err := stubs.Generate(options, slog.Default()); err != nil {
				slog.Default().Error("stub generation failed", "error", err)
				os.Exit(1)
			}
		},
	}
	stubsCmd.PersistentFlags().StringVarP(&options.ClassDir, "class-directory", "i", ".", "compiler output directory to scan")
	stubsCmd.PersistentFlags().StringSliceVarP(&options.Packages, "annotation-packages", "p", []string{}, "annotation packages to honor, ex: lombok (empty honors any)")
	stubsCmd.PersistentFlags().StringVarP(&options.StubsDir, "output-directory", "o", "stubs", "directory to write generated stubs")
	stubsCmd.PersistentFlags().StringVarP(&options.StubsFile, "output-file", "f", "mirror_gen.go", "output file where stubs will be written")
	stubsCmd.PersistentFlags().StringVar(&options.StubsPackage, "package", "mirror", "Go package name of the stubs file")

	return stubsCmd
}

func NewDiffCommand() *cobra.Command {
	var manifestPath string

	var diffCmd = &cobra.Command{
		Use:   "diff",
		Short: "diff the current run report against the previous one",
		Run: func(c *cobra.Command, args []string) {
			d, err := snapshot.DiffCurrentWithPrevious(manifestPath)
			if err != nil {
				slog.Default().Error("diff failed", "error", err)
				os.Exit(1)
			}
			if d == "" {
				fmt.Println("no changes between runs")
				return
			}
			fmt.Print(d)
		},
	}
	diffCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "classweave.manifest.yaml", "manifest file recording run reports")

	return diffCmd
}
