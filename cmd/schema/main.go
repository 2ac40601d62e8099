package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/umputun/wkbadge/pkg/config"
)

func main() {
	outputPath := "schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	schema, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("failed to generate schema: %v", err)
	}
	schema.Title = "wkbadge configuration"
	schema.Description = "Daemon configuration, loaded from YAML with environment variables expanded"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal schema: %v", err)
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		log.Fatalf("failed to write schema file: %v", err)
	}

	fmt.Printf("schema for %s written to %s\n", "wkbadge", outputPath)
}
