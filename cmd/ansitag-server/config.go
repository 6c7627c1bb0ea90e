package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultPort = 3000
	// how many parent directories the .env search climbs
	maxParentSearch = 3
)

type config struct {
	port    int
	wwwroot string
}

var errNoWWWRoot = errors.New(`could not find a wwwroot directory
Searched locations:
  - WWWROOT environment variable (relative to cwd and executable)
  - wwwroot/ directory in the current directory and its parents
  - /var/www/html
Use --wwwroot or -w to specify a directory explicitly`)

// loadConfig resolves the runtime settings from CLI arguments and the
// environment. .env files are loaded first and never override variables that
// are already set.
func loadConfig(cliPort, cliRoot string) (config, error) {
	loadEnvFiles()
	port, err := resolvePort(cliPort)
	if err != nil {
		return config{}, err
	}
	root, err := resolveWWWRoot(cliRoot)
	if err != nil {
		return config{}, err
	}
	return config{port: port, wwwroot: root}, nil
}

// loadEnvFiles looks for a .env near the working directory and another near
// the executable. Both are loaded when found; existing variables win.
func loadEnvFiles() {
	if cwd, err := os.Getwd(); err == nil {
		if path := findEnvUpward(cwd); path != "" {
			loadEnvFile(path)
		}
	}
	if exe, err := os.Executable(); err == nil {
		if path := findEnvUpward(filepath.Dir(exe)); path != "" {
			loadEnvFile(path)
		}
	}
}

func findEnvUpward(start string) string {
	dir := start
	for range maxParentSearch + 1 {
		path := filepath.Join(dir, ".env")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnvFile(path string) {
	// godotenv.Load keeps variables that are already set
	if err := godotenv.Load(path); err != nil {
		log.Printf("Warning: could not load %s: %v", path, err)
	}
}

// resolvePort picks the listen port: the CLI argument, then HTTP_PORT, then
// PORT, then the default. Unparseable environment values are skipped.
func resolvePort(cliPort string) (int, error) {
	if cliPort != "" {
		n, err := strconv.Atoi(cliPort)
		if err != nil || n < 1 || n > 65535 {
			return 0, fmt.Errorf("invalid port %q", cliPort)
		}
		return n, nil
	}
	for _, key := range []string{"HTTP_PORT", "PORT"} {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 65535 {
				return n, nil
			}
		}
	}
	return defaultPort, nil
}

// resolveWWWRoot locates the static file directory: the CLI argument, then
// the WWWROOT variable, then an upward search for wwwroot/, then the system
// fallback.
func resolveWWWRoot(cliRoot string) (string, error) {
	if cliRoot != "" {
		path := cliRoot
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("working directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		if !isDir(path) {
			return "", fmt.Errorf("specified wwwroot directory does not exist: %s", path)
		}
		return path, nil
	}
	if path := wwwrootFromEnv(); path != "" {
		return path, nil
	}
	if path := searchParentsForWWWRoot(); path != "" {
		return path, nil
	}
	if isDir("/var/www/html") {
		return "/var/www/html", nil
	}
	return "", errNoWWWRoot
}

// wwwrootFromEnv resolves the WWWROOT variable. Relative values are tried
// against the working directory first, then the executable directory.
func wwwrootFromEnv() string {
	v := os.Getenv("WWWROOT")
	if v == "" {
		return ""
	}
	if filepath.IsAbs(v) {
		if isDir(v) {
			return v
		}
		return ""
	}
	if cwd, err := os.Getwd(); err == nil {
		if path := filepath.Join(cwd, v); isDir(path) {
			return path
		}
	}
	if exe, err := os.Executable(); err == nil {
		if path := filepath.Join(filepath.Dir(exe), v); isDir(path) {
			return path
		}
	}
	return ""
}

func searchParentsForWWWRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if path := filepath.Join(dir, "wwwroot"); isDir(path) {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
