package main

import (
	"fmt"
	"os"
	"strings"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/maximlamare/S3-extract/product"
)

func listBandsAction(c *cli.Context) error {
	sceneDir := c.String("input")
	if sceneDir == "" {
		return cli.NewExitError("the input scene folder flag is required", 1)
	}

	listing, err := product.ListSceneBands(sceneDir)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	text := formatListing(listing)
	if path := c.String("output"); path != "" {
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		return nil
	}
	fmt.Print(text)
	return nil
}

//formatListing renders the inventory the way the SNAP product explorer
//groups it.
func formatListing(listing *product.Listing) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Scene: %s\n", listing.Dir)
	writeListingSection(&builder, "Bands", listing.Bands)
	writeListingSection(&builder, "Tie-point grids", listing.TiePointGrids)
	writeListingSection(&builder, "Masks", listing.Masks)
	if len(listing.Skipped) > 0 {
		writeListingSection(&builder, "Skipped files", listing.Skipped)
	}
	return builder.String()
}

func writeListingSection(builder *strings.Builder, title string, names []string) {
	fmt.Fprintf(builder, "\n%s (%d):\n", title, len(names))
	for _, name := range names {
		fmt.Fprintf(builder, "  %s\n", name)
	}
}
