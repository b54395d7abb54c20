package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/catalog"

	"github.com/shopspring/decimal"
)

// generateSampleCatalog writes a small catalogue for local runs:
// data/catalog.json and its gzipped copy data/catalog.json.gz.
// Import it with: go run ./cmd/import -file data/catalog.json
func main() {
	dataDir := "data"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	doc := sampleCatalog()

	for _, name := range []string{"catalog.json", "catalog.json.gz"} {
		filePath := filepath.Join(dataDir, name)

		if err := writeCatalogFile(filePath, doc); err != nil {
			log.Fatalf("Failed to create %s: %v", name, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(doc.Data.Products))
	}

	fmt.Println("\nSample catalogue files created successfully!")
	fmt.Println("\nProducts:")
	for _, p := range doc.Data.Products {
		stock := "in stock"
		if !p.InStock {
			stock = "out of stock"
		}
		fmt.Printf("  - %-22s %-8s %s\n", p.ID, p.Category, stock)
	}
}

func usd(amount string) []catalog.PriceEntry {
	return []catalog.PriceEntry{
		{Amount: decimal.RequireFromString(amount), Currency: catalog.CurrencyEntry{Label: "USD", Symbol: "$"}},
	}
}

func textItems(values ...string) []catalog.ItemEntry {
	items := make([]catalog.ItemEntry, 0, len(values))
	for _, v := range values {
		items = append(items, catalog.ItemEntry{ID: v, Value: v, DisplayValue: v})
	}
	return items
}

func sampleCatalog() catalog.Document {
	return catalog.Document{Data: catalog.Data{
		Categories: []catalog.CategoryEntry{{Name: "all"}, {Name: "clothes"}, {Name: "tech"}},
		Products: []catalog.ProductEntry{
			{
				ID:          "huarache-x-stussy-le",
				Name:        "Nike Air Huarache Le",
				InStock:     true,
				Gallery:     []string{"https://images.example.com/huarache-1.jpg", "https://images.example.com/huarache-2.jpg"},
				Description: "<p>Great sneakers for everyday use!</p>",
				Category:    "clothes",
				Attributes: []catalog.AttributeEntry{
					{ID: "Size", Name: "Size", Type: "text", Items: textItems("40", "41", "42", "43")},
				},
				Prices: usd("144.69"),
				Brand:  "Nike x Stussy",
			},
			{
				ID:          "jacket-canada-goosee",
				Name:        "Jacket",
				InStock:     false,
				Gallery:     []string{"https://images.example.com/jacket-1.png"},
				Description: "<p>Awesome winter jacket</p>",
				Category:    "clothes",
				Attributes: []catalog.AttributeEntry{
					{ID: "Size", Name: "Size", Type: "text", Items: []catalog.ItemEntry{
						{ID: "Small", Value: "S", DisplayValue: "Small"},
						{ID: "Medium", Value: "M", DisplayValue: "Medium"},
						{ID: "Large", Value: "L", DisplayValue: "Large"},
					}},
				},
				Prices: usd("518.47"),
				Brand:  "Canada Goose",
			},
			{
				ID:          "ps-5",
				Name:        "PlayStation 5",
				InStock:     true,
				Gallery:     []string{"https://images.example.com/ps5-1.png", "https://images.example.com/ps5-2.png"},
				Description: "<p>A good gaming console. Plays games of PS4! Enjoy if you can buy it mwahahahaha</p>",
				Category:    "tech",
				Attributes: []catalog.AttributeEntry{
					{ID: "Color", Name: "Color", Type: "swatch", Items: []catalog.ItemEntry{
						{ID: "Green", Value: "#44FF03", DisplayValue: "Green"},
						{ID: "Cyan", Value: "#03FFF7", DisplayValue: "Cyan"},
						{ID: "Blue", Value: "#030BFF", DisplayValue: "Blue"},
					}},
					{ID: "Capacity", Name: "Capacity", Type: "text", Items: textItems("512G", "1T")},
				},
				Prices: usd("844.02"),
				Brand:  "Sony",
			},
			{
				ID:          "apple-airtag",
				Name:        "AirTag",
				InStock:     true,
				Gallery:     []string{"https://images.example.com/airtag.jpg"},
				Description: "<h1>Lose your knack for losing things.</h1>",
				Category:    "tech",
				Prices:      usd("120.57"),
				Brand:       "Apple",
			},
		},
	}}
}

func writeCatalogFile(filePath string, doc catalog.Document) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	if filepath.Ext(filePath) == ".gz" {
		gzipWriter := gzip.NewWriter(file)
		defer gzipWriter.Close()
		w = gzipWriter
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write catalogue: %w", err)
	}

	return nil
}
