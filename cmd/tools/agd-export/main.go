// Command agd-export lists and exports tables from an ActiGraph .agd
// recording as CSV.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/somno-data/sleep.report/internal/agd"
)

func main() {
	input := flag.String("d", "", "input .agd file")
	table := flag.String("t", "", "table to export (omit to list tables)")
	output := flag.String("o", "", "output CSV path (defaults to stdout)")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := agd.Open(*input)
	if err != nil {
		log.Fatalf("open %s: %v", *input, err)
	}
	defer f.Close()

	if *table == "" {
		tables, err := f.Tables()
		if err != nil {
			log.Fatalf("list tables: %v", err)
		}
		for _, name := range tables {
			fmt.Println(name)
		}
		return
	}

	out := os.Stdout
	if *output != "" {
		out, err = os.Create(*output)
		if err != nil {
			log.Fatalf("create %s: %v", *output, err)
		}
		defer out.Close()
	}
	if err := f.ExportCSV(*table, out); err != nil {
		log.Fatalf("export %s: %v", *table, err)
	}
	if *output != "" {
		log.Printf("✓ Exported %s to %s", *table, *output)
	}
}
