package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kakeibo/kakeibo-csv/cmd/batch"
	"kakeibo/kakeibo-csv/cmd/categorize"
	"kakeibo/kakeibo-csv/cmd/importcsv"
	"kakeibo/kakeibo-csv/cmd/mapping"
	"kakeibo/kakeibo-csv/cmd/root"
)

// newApp assembles the command tree.
func newApp() *cobra.Command {
	app := root.NewCmd()
	app.AddCommand(importcsv.NewCmd())
	app.AddCommand(batch.NewCmd())
	app.AddCommand(categorize.NewCmd())
	app.AddCommand(mapping.NewCmd())
	return app
}

func main() {
	if err := newApp().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ エラー: %v\n", err)
		os.Exit(1)
	}
}
