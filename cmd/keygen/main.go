// Package main provides a CLI tool for generating the gateway's pre-shared
// secrets: the device API key (with its bcrypt hash for IOT_DEVICE_API_KEY_HASH)
// and the admin token.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"tapbank/internal/platform/config"
	"tapbank/pkg/secrets"
)

type keyOutput struct {
	Key   string            `json:"key"`
	Hash  string            `json:"hash,omitempty"`
	Usage map[string]string `json:"usage"`
}

func main() {
	deviceCmd := flag.NewFlagSet("device", flag.ExitOnError)
	hashCmd := flag.NewFlagSet("hash", flag.ExitOnError)
	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)

	deviceHash := deviceCmd.Bool("hash", true, "Also emit the bcrypt hash for IOT_DEVICE_API_KEY_HASH")
	deviceJSON := deviceCmd.Bool("json", false, "Output as JSON")

	hashKey := hashCmd.String("key", "", "Existing device key to hash")
	hashJSON := hashCmd.Bool("json", false, "Output as JSON")

	adminJSON := adminCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "device":
		deviceCmd.Parse(os.Args[2:])
		generateDeviceKey(*deviceHash, *deviceJSON)
	case "hash":
		hashCmd.Parse(os.Args[2:])
		hashExistingKey(*hashKey, *hashJSON)
	case "admin":
		adminCmd.Parse(os.Args[2:])
		generateAdminToken(*adminJSON)
	default:
		printUsage()
		os.Exit(1)
	}
}

func generateDeviceKey(withHash, asJSON bool) {
	key, err := secrets.Generate()
	if err != nil {
		fatal(err)
	}

	out := keyOutput{
		Key: key,
		Usage: map[string]string{
			"env":    "IOT_DEVICE_API_KEY=" + key,
			"header": "X-Device-API-Key: " + key,
		},
	}
	if withHash {
		hash, err := secrets.Hash(key)
		if err != nil {
			fatal(err)
		}
		out.Hash = hash
		out.Usage["env_hash"] = "IOT_DEVICE_API_KEY_HASH=" + hash
	}

	emit(out, asJSON)
}

func hashExistingKey(key string, asJSON bool) {
	if key == "" {
		fmt.Fprintln(os.Stderr, "error: -key is required")
		os.Exit(1)
	}
	hash, err := secrets.Hash(key)
	if err != nil {
		fatal(err)
	}

	emit(keyOutput{
		Key:  key,
		Hash: hash,
		Usage: map[string]string{
			"env_hash": "IOT_DEVICE_API_KEY_HASH=" + hash,
		},
	}, asJSON)
}

func generateAdminToken(asJSON bool) {
	token, err := secrets.Generate()
	if err != nil {
		fatal(err)
	}

	emit(keyOutput{
		Key: token,
		Usage: map[string]string{
			"env":      "ADMIN_TOKEN=" + token,
			"header":   "X-Admin-Token: " + token,
			"dev_hint": "unset ADMIN_TOKEN to fall back to " + config.DevAdminToken,
		},
	}, asJSON)
}

func emit(out keyOutput, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fatal(err)
		}
		return
	}

	fmt.Println(out.Key)
	if out.Hash != "" {
		fmt.Println(out.Hash)
	}
	for k, v := range out.Usage {
		fmt.Fprintf(os.Stderr, "# %s: %s\n", k, v)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: keygen <command> [flags]

Commands:
  device   Generate a device API key (and its bcrypt hash)
  hash     Hash an existing device key with bcrypt
  admin    Generate an admin token

Run 'keygen <command> -h' for command flags.`)
}
