/*
Command otsanitize checks the layout and color tables of a font file.

Every table of every face (or of a single face selected with -face) is run
through the sanitizer of package ot, and reported as PASSED, FAILED or
SKIPPED. Tables which package ot does not inspect are reported as SKIPPED.
The exit code is the number of tables which failed.

Usage:

	otsanitize -font path/to/font.otf [-face n] [-trace Debug|Info|Error] [-v]
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/npillmayer/otview/internal/fontload"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}

const maxExitCode = 125

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":     "go",
		"trace.font.opentype": "Error",
		"trace.font.layout":   "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(maxExitCode + 1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to check")
	faceIndex := flag.Int("face", -1, "Face of a font collection to check (default all)")
	verbose := flag.Bool("v", false, "List sanitizer errors and warnings")
	flag.Parse()
	if !setTraceLevel(*tlevel) {
		pterm.Error.Println("invalid trace level: " + *tlevel)
		os.Exit(maxExitCode + 2)
	}
	if *fontname == "" {
		pterm.Error.Println("no font given, use -font")
		flag.Usage()
		os.Exit(maxExitCode + 2)
	}
	//
	// load font to check
	f, err := fontload.LoadOpenTypeFont(*fontname)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(maxExitCode + 2)
	}
	pterm.Info.Println(fmt.Sprintf("checking %s (%d face(s))", f.Fontname, f.FaceCount()))
	faces := []int{*faceIndex}
	if *faceIndex < 0 {
		faces = faces[:0]
		for i := range f.FaceCount() {
			faces = append(faces, i)
		}
	}
	var total report
	for _, i := range faces {
		face, err := f.Face(i)
		if err != nil {
			pterm.Error.Println(fmt.Sprintf("face %d: %s", i, err.Error()))
			total.failed++
			continue
		}
		r := checkFace(face)
		r.print(face, *verbose)
		total.add(r)
	}
	total.printSummary()
	os.Exit(min(total.failed, maxExitCode))
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setTraceLevel(level string) bool {
	l := tracing.LevelError
	switch level {
	case "Debug":
		l = tracing.LevelDebug
	case "Info":
		l = tracing.LevelInfo
	case "Error":
	default:
		return false
	}
	for _, key := range []string{"font.opentype", "font.layout"} {
		tracing.Select(key).SetTraceLevel(l)
	}
	tracer().Infof("Trace level is %s", level)
	return true
}
