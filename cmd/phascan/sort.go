package main

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/pipeline"
)

const (
	dirSuccessful = "successful"
	dirUseless    = "useless"
	samplesFile   = "samples.csv"
)

// sortApk files an analyzed apk next to where it was found:
//
//	successful/<package>.apk  classified into a table category
//	useless/<package>.apk     not loadable, no description, or no phrase
//
// Uncategorized apks stay in place for review. Packages with descriptions
// are added to samples.csv. Decoded directories are never moved.
func sortApk(res pipeline.Result) error {
	if !strings.EqualFold(filepath.Ext(res.Source), ".apk") {
		return nil
	}

	root := filepath.Dir(res.Source)
	rp := res.Report

	if res.Err == nil && len(rp.Descriptions) > 0 && rp.Package != "" {
		if err := addSample(filepath.Join(root, samplesFile), rp.Package); err != nil {
			return err
		}
	}

	var dir string
	switch {
	case res.Err != nil, rp.Category == category.NoEvidence, rp.Category == "":
		dir = dirUseless
	case rp.Category == category.Uncategorized:
		return nil
	default:
		dir = dirSuccessful
	}

	dst := filepath.Join(root, dir)
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	return os.Rename(res.Source, filepath.Join(dst, apkName(res)))
}

// apkName is <package>.apk, or the file name when the package is unknown.
func apkName(res pipeline.Result) string {
	if res.Err != nil || res.Report.Package == "" {
		return filepath.Base(res.Source)
	}
	return res.Report.Package + ".apk"
}

// addSample keeps path a sorted list of unique package names, one per line.
func addSample(path, pkg string) error {
	seen := map[string]bool{pkg: true}

	f, err := os.Open(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err == nil {
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				seen[line] = true
			}
		}
		f.Close()
		if err := sc.Err(); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return os.WriteFile(path, []byte(strings.Join(names, "\n")+"\n"), 0644)
}
