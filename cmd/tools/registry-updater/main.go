// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"
	"time"

	"session-provisioner/internal/server"
	"session-provisioner/pkg/registry"
)

const defaultPath = "configs/endpoint-registry.json"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)

	exportPath := exportCmd.String("path", defaultPath, "Path to write the registry file")
	validatePath := validateCmd.String("path", defaultPath, "Path to registry file")
	checkPath := checkCmd.String("path", defaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		reg := registry.New(server.RegistryVersion, server.Endpoints(), time.Now())
		if err := reg.Validate(); err != nil {
			fmt.Printf("Route table is invalid: %v\n", err)
			os.Exit(1)
		}
		if err := registry.SaveRegistry(reg, *exportPath); err != nil {
			fmt.Printf("Error writing registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d endpoints to %s\n", len(reg.Endpoints), *exportPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Failed to load registry: %v\n", err)
			os.Exit(1)
		}
		if err := reg.Validate(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d endpoints.\n", len(reg.Endpoints))

	case "check":
		checkCmd.Parse(os.Args[2:])
		if err := checkRegistry(*checkPath); err != nil {
			fmt.Printf("Registry is stale: %v\n", err)
			fmt.Println("Run 'registry-updater export' to regenerate it.")
			os.Exit(1)
		}
		fmt.Println("Registry matches the server route table.")

	case "help":
		fallthrough
	default:
		help()
	}
}

// checkRegistry compares the file on disk with the compiled route table.
func checkRegistry(path string) error {
	onDisk, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	current := registry.New(server.RegistryVersion, server.Endpoints(), time.Now())

	if onDisk.Version != current.Version {
		return fmt.Errorf("version %s, route table is %s", onDisk.Version, current.Version)
	}
	if len(onDisk.Endpoints) != len(current.Endpoints) {
		return fmt.Errorf("%d endpoints on disk, %d in route table", len(onDisk.Endpoints), len(current.Endpoints))
	}
	for _, want := range current.Endpoints {
		got, ok := onDisk.Find(want.Method, want.Path)
		if !ok {
			return fmt.Errorf("missing %s %s", want.Method, want.Path)
		}
		if got.ID != want.ID || !reflect.DeepEqual(got.ErrorCodes, want.ErrorCodes) || !reflect.DeepEqual(got.RateLimits, want.RateLimits) {
			return fmt.Errorf("%s %s differs", want.Method, want.Path)
		}
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  export   Write the endpoint registry generated from the server route table
  validate Validate a registry file
  check    Fail when the registry file no longer matches the route table
  help     Show this help message

Examples:
  registry-updater export -path configs/endpoint-registry.json
  registry-updater validate -path configs/endpoint-registry.json
  registry-updater check

Use 'registry-updater <command> -h' for more information about a command.
`)
}
