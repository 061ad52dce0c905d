package main

import (
	"fmt"
	"log"
	"os"

	"net/http"
	_ "net/http/pprof"

	"github.com/spf13/pflag"
	"github.com/tunedex/tunedex"
)

func main() {
	// Define the flags
	pflag.Bool("serve", false, "Start the server")
	pflag.String("dump", "", "Dump the library from the specified file")
	pflag.String("export", "", "Export the collection from the specified file to stdout")
	pflag.String("import", "", "Import a collection from the specified JSON file")
	pflag.String("output", "", "Specify the output file for import (required with --import)")
	pflag.Parse()

	// Handle --dump flag
	dumpFile := pflag.Lookup("dump").Value.String()
	if dumpFile != "" {
		tunedex.DumpLibrary(dumpFile)
		return
	}

	// Handle --export flag
	exportFile := pflag.Lookup("export").Value.String()
	if exportFile != "" {
		collection, err := tunedex.NewCollection(tunedex.CollectionOptions{
			Name:     exportFile,
			FileMode: tunedex.ReadOnly,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening collection: %v\n", err)
			os.Exit(1)
		}
		defer collection.Close()

		if err := tunedex.ExportJSON(collection, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting collection: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Handle --import flag
	importFile := pflag.Lookup("import").Value.String()
	outputFile := pflag.Lookup("output").Value.String()
	if importFile != "" {
		if outputFile == "" {
			fmt.Fprintf(os.Stderr, "Error: --output flag is required when using --import\n")
			os.Exit(1)
		}

		jsonFile, err := os.Open(importFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening JSON file: %v\n", err)
			os.Exit(1)
		}
		defer jsonFile.Close()

		if err := tunedex.ImportJSON(outputFile, jsonFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing collection: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Collection successfully imported to: %s\n", outputFile)
		return
	}

	// Handle --serve flag
	if pflag.Lookup("serve").Value.String() == "true" {
		if err := LoadConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}

		if pflag.Lookup("pprof").Value.String() == "true" {
			go func() {
				log.Println(http.ListenAndServe("localhost:6060", nil))
			}()
		}

		tunedex.RunServer()
		return
	}

	// Output help message
	fmt.Println("Usage:")
	pflag.PrintDefaults()
}
