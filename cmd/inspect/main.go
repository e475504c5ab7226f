package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/typeforge/typecatalog/catalog"
	"github.com/typeforge/typecatalog/descriptor"
	"github.com/typeforge/typecatalog/importer"
)

func main() {
	var (
		catalogFile = flag.String("catalog", "", "Path to TOML catalog file")
		typeName    = flag.String("type", "", "Type to describe (optional)")
		list        = flag.Bool("list", false, "List registered types and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *catalogFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -catalog <file.toml> [-type name]")
		fmt.Fprintln(os.Stderr, "       inspect -catalog <file.toml> -list")
		fmt.Fprintln(os.Stderr, "       inspect -catalog <file.toml> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*catalogFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*catalogFile, *typeName, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(catalogFile, typeName string, listOnly bool) error {
	cat := catalog.Open()
	defer cat.Close()

	n, err := importer.LoadCatalogFile(catalogFile, cat)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	fmt.Printf("Catalog: %s\n", catalogFile)
	fmt.Printf("Declarations: %d\n", n)
	fmt.Printf("Ordinals: %d\n", cat.OrdinalLimit()-1)

	if typeName != "" {
		ord := cat.LookupName(typeName)
		if ord == 0 {
			return fmt.Errorf("type %q not registered", typeName)
		}
		d, err := cat.Get(ord)
		if err != nil {
			return err
		}
		fmt.Printf("\nOrdinal: %d\n", ord)
		fmt.Printf("Size: %d bytes\n", cat.TypeSize(ord))
		fmt.Printf("%s\n", descriptor.Render(d, typeName, cat.Resolver()))
		return nil
	}

	if listOnly {
		fmt.Printf("\nRegistered types:\n")
		// Collect under the iteration lock, size and render outside it.
		type listed struct {
			ord  descriptor.Ordinal
			name string
		}
		var types []listed
		cat.Each(func(ord descriptor.Ordinal, name string, d descriptor.Descriptor) bool {
			types = append(types, listed{ord: ord, name: name})
			return true
		})
		for _, l := range types {
			d, err := cat.Get(l.ord)
			if err != nil {
				continue
			}
			fmt.Printf("  %4d  %6d  %s\n", l.ord, cat.TypeSize(l.ord), descriptor.Render(d, l.name, cat.Resolver()))
		}
	}
	return nil
}
