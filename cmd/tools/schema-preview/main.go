// cmd/tools/schema-preview/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	schemapreview "session-provisioner/internal/diagnostics/schema-preview"
	"session-provisioner/internal/models"
)

func main() {
	provider := flag.String("provider", "notion", "Target store: notion or airtable")
	platform := flag.String("platform", "", "Chat platform (chatgpt, claude, gemini, perplexity, copilot, other)")
	priorities := flag.String("priorities", "", "Comma-separated priorities (organization, analytics, collaboration, search)")
	features := flag.String("features", "", "Comma-separated features (projects, tags, reminders, export)")
	teamSize := flag.String("team-size", "", "Team size (solo, small, medium, large)")
	complexity := flag.String("complexity", "", "Complexity (simple, standard, advanced)")
	flag.Parse()

	input := schemapreview.Input{
		Provider: schemapreview.Provider(*provider),
		Config: models.BuildConfig{
			Platform:   models.Platform(*platform),
			Priorities: splitList[models.Priority](*priorities),
			Features:   splitList[models.Feature](*features),
			TeamSize:   models.TeamSize(*teamSize),
			Complexity: models.Complexity(*complexity),
		},
	}

	out, err := schemapreview.Preview(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

func splitList[T ~string](s string) []T {
	out := []T{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, T(part))
		}
	}
	return out
}
