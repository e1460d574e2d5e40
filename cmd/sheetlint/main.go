// Command sheetlint checks a sheet export (.csv or .xlsx) against the
// catalog rules. The web application skips defective rows silently;
// sheetlint is where those skips become visible, so a sheet owner can
// see exactly which rows will be missing from the catalog and why.
package main

import (
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yutaka-m/invoicer/internal/catalog"
	"github.com/yutaka-m/invoicer/internal/render"
	"github.com/yutaka-m/invoicer/internal/source"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sheetlint <file>",
	Short: "Lint a product sheet export against the catalog rules",
	Long: `sheetlint parses a sheet export the same way the invoice server does
and reports every row that would be excluded from the product catalog,
along with the exclusion reason. The first row is treated as the header.`,
	Args: cobra.ExactArgs(1),
	RunE: runLint,

	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sheetlint %s (%s)\n", version, runtime.Version())
	},
}

func runLint(cmd *cobra.Command, args []string) error {
	fetcher := &source.FileFetcher{Path: args[0]}
	rows, err := fetcher.Fetch(cmd.Context())
	if err != nil {
		return err
	}

	products, defects := catalog.BuildReport(rows)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "row\tstatus\tdetail\n")
	for _, d := range defects {
		fmt.Fprintf(w, "%d\tskipped\t%s\n", d.RowIndex, d.Reason)
	}
	for _, p := range products {
		fmt.Fprintf(w, "%s\tok\t%s (%s)\n", p.ID, p.Name, render.FormatYen(p.Price))
	}
	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d products, %d rows skipped\n", len(products), len(defects))
	return nil
}

func main() {
	rootCmd.AddCommand(versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
