// ansitag-server hosts a small web UI around the converter: an upload form,
// a viewer page for the converted art, and the static assets that give the
// ans-* tags their colors.
package main

import (
	"log"

	"github.com/docopt/docopt-go"
)

// set via linker flags by the release build:
var version = ""

func main() {
	usage := `ansitag-server hosts a web UI for the art converter.
Usage:
	ansitag-server [--port=<number>] [--wwwroot=<dir>]
	ansitag-server -h | --help
	ansitag-server --version
Options:
	-p --port=<number>  Port number to bind against.
	-w --wwwroot=<dir>  Directory for static files, absolute or relative to the working directory.
	-h --help           Show this screen.
	--version           Show version.`

	arguments, _ := docopt.ParseArgs(usage, nil, versionString())
	cliPort, _ := arguments["--port"].(string)
	cliRoot, _ := arguments["--wwwroot"].(string)

	cfg, err := loadConfig(cliPort, cliRoot)
	if err != nil {
		log.Fatal("Error: ", err.Error())
	}
	if err := run(cfg); err != nil {
		log.Fatal("Server failed: ", err.Error())
	}
}

func versionString() string {
	if version == "" {
		return "ansitag-server devel"
	}
	return "ansitag-server " + version
}
