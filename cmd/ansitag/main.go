// ansitag is the command line front end for the converter. It reads one art
// file, or standard input, and writes the HTML fragment to standard output
// or a file.
package main

import (
	"io"
	"log"
	"os"

	"github.com/docopt/docopt-go"

	"github.com/bengarrett/ansitag"
)

// set via linker flags by the release build:
var version = ""

func main() {
	usage := `ansitag renders ANSI and BBS text art as HTML.
Usage:
	ansitag [--utf8] [--synchronet] [--renegade] [--output=<dest>] [<filename>]
	ansitag -h | --help
	ansitag --version
Options:
	--utf8           Treat the input as UTF-8 text instead of CP437 bytes.
	--synchronet     Interpret Synchronet Ctrl-A color codes.
	--renegade       Interpret Renegade pipe color codes.
	--output=<dest>  Write the HTML fragment to a file instead of stdout.
	-h --help        Show this screen.
	--version        Show version.`

	arguments, _ := docopt.ParseArgs(usage, nil, versionString())
	opts := ansitag.Options{
		UTF8Input:       arguments["--utf8"].(bool),
		SynchronetCtrlA: arguments["--synchronet"].(bool),
		RenegadePipe:    arguments["--renegade"].(bool),
	}

	in := io.Reader(os.Stdin)
	if name, ok := arguments["<filename>"].(string); ok {
		f, err := os.Open(name)
		if err != nil {
			log.Fatal("Could not open the input file: ", err.Error())
		}
		defer f.Close()
		in = f
	}

	out := io.Writer(os.Stdout)
	if name, ok := arguments["--output"].(string); ok {
		f, err := os.Create(name)
		if err != nil {
			log.Fatal("Could not create the output file: ", err.Error())
		}
		defer f.Close()
		out = f
	}

	if _, err := ansitag.WriteTo(in, out, opts); err != nil {
		log.Fatal("Conversion failed: ", err.Error())
	}
}

func versionString() string {
	if version == "" {
		return "ansitag devel"
	}
	return "ansitag " + version
}
