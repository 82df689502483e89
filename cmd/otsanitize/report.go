package main

import (
	"fmt"
	"strings"

	"github.com/npillmayer/otview/ot"
	"github.com/npillmayer/otview/otquery"
	"github.com/pterm/pterm"
)

type tableResult struct {
	tag    ot.Tag
	result ot.SanitizeResult
}

// report collects the sanitization outcomes of one or more faces.
type report struct {
	tables                  []tableResult
	passed, failed, skipped int
}

// checkFace sanitizes every table of a face.
func checkFace(face *ot.Face) report {
	var r report
	for _, tag := range face.TableTags() {
		res := face.Sanitize(tag)
		r.tables = append(r.tables, tableResult{tag: tag, result: res})
		r.count(res)
	}
	return r
}

func (r *report) count(res ot.SanitizeResult) {
	switch res {
	case ot.Passed:
		r.passed++
	case ot.Failed:
		r.failed++
	default:
		r.skipped++
	}
}

func (r *report) add(other report) {
	r.passed += other.passed
	r.failed += other.failed
	r.skipped += other.skipped
}

func (r report) print(face *ot.Face, verbose bool) {
	sum := otquery.Summary(face)
	pterm.Printf("face %d: %s, %d glyphs, scripts [%s], %d palettes\n", sum.Index,
		flavorName(sum.Flavor), sum.GlyphCount, tagList(sum.Scripts), sum.Palettes)
	data := [][]string{{"Table", "Result"}}
	for _, t := range r.tables {
		data = append(data, []string{t.tag.String(), styled(t.result)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	if !verbose {
		return
	}
	for _, err := range face.Errors() {
		pterm.Println(err.Error())
	}
	for _, w := range face.Warnings() {
		pterm.Println(w.String())
	}
}

func (r report) printSummary() {
	msg := fmt.Sprintf("%d passed, %d failed, %d skipped", r.passed, r.failed, r.skipped)
	if r.failed > 0 {
		pterm.Error.Println(msg)
		return
	}
	pterm.Success.Println(msg)
}

func styled(res ot.SanitizeResult) string {
	switch res {
	case ot.Passed:
		return pterm.FgGreen.Sprint(res.String())
	case ot.Failed:
		return pterm.FgRed.Sprint(res.String())
	}
	return pterm.FgYellow.Sprint(res.String())
}

func flavorName(flavor ot.Tag) string {
	switch flavor {
	case ot.FlavorTrueType, ot.FlavorAppleTrue:
		return "TrueType"
	case ot.FlavorCFF:
		return "CFF"
	}
	return flavor.String()
}

func tagList(tags []ot.Tag) string {
	s := make([]string, len(tags))
	for i, tag := range tags {
		s[i] = tag.String()
	}
	return strings.Join(s, " ")
}
