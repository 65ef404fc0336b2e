package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

// inspectCmd prints selected fields out of a persisted queue/crash/report
// JSON snapshot without decoding it into a typed struct, useful for a
// quick look at a file from internal/persist or internal/report on disk.
var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot.json>",
	Short: "print key fields from a persisted queue, crash, or report snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if !gjson.ValidBytes(data) {
			return fmt.Errorf("inspect: %s is not valid JSON", args[0])
		}

		root := gjson.ParseBytes(data)
		for _, field := range []string{"run_id", "hash", "coverage", "final_bits", "ticks", "max_coverage", "achieved_coverage"} {
			if v := root.Get(field); v.Exists() {
				fmt.Printf("%-18s %s\n", field+":", v.String())
			}
		}
		if mutators := root.Get("mutators"); mutators.Exists() {
			mutators.ForEach(func(_, m gjson.Result) bool {
				fmt.Printf("  mutator %-20s trials=%-6s accepted=%s\n",
					m.Get("name").String(), m.Get("trials").String(), m.Get("accepted").String())
				return true
			})
		}
		return nil
	},
}
