package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/config"
	"github.com/revelaction/phascan/parse"
	"github.com/revelaction/phascan/pipeline"
	"github.com/revelaction/phascan/sentence"
	"github.com/revelaction/phascan/storage/filesystem"
)

const interceptText = "This app can intercept text message"

const manifestXML = `<?xml version="1.0" encoding="utf-8" standalone="no"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android" package="com.example.spy">
    <application>
        <service android:name=".SpyService" android:permission="android.permission.BIND_ACCESSIBILITY_SERVICE">
            <meta-data android:name="android.accessibilityservice" android:resource="@xml/spy_config"/>
        </service>
    </application>
</manifest>`

const configXML = `<?xml version="1.0" encoding="utf-8"?>
<accessibility-service xmlns:android="http://schemas.android.com/apk/res/android"
    android:description="This app can intercept text message"
    android:accessibilityEventTypes="typeViewClicked|typeNotificationStateChanged"/>`

func tok(index, head int, text, pos, dep string) sentence.Token {
	return sentence.Token{Id: index, Index: index, Head: head, Text: text, Lemma: text, Pos: pos, Dep: dep}
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

// docsDir writes the pre-parsed doc of interceptText and returns its
// directory and file.
func docsDir(t *testing.T) (string, string) {
	t.Helper()

	doc := sentence.Doc{
		Title: interceptText,
		Sentences: []sentence.Sentence{{Tokens: []sentence.Token{
			tok(0, 1, "This", "DET", "det"),
			tok(1, 3, "app", "NOUN", "nsubj"),
			tok(2, 3, "can", "AUX", "aux"),
			tok(3, 3, "intercept", "VERB", "ROOT"),
			tok(4, 5, "text", "NOUN", "compound"),
			tok(5, 3, "message", "NOUN", "dobj"),
		}}},
	}

	content, err := json.Marshal(doc)
	require.NoError(t, err)

	dir := t.TempDir()
	file := filepath.Join(dir, "intercept.json")
	writeFile(t, file, content)
	return dir, file
}

func decodedDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "spy")
	writeFile(t, filepath.Join(dir, "AndroidManifest.xml"), []byte(manifestXML))
	writeFile(t, filepath.Join(dir, "res", "xml", "spy_config.xml"), []byte(configXML))
	return dir
}

// run executes the cli with a missing config file, so defaults apply.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cfg := filepath.Join(t.TempDir(), "missing.yaml")

	argv := append([]string{"phascan", "-c", cfg, "--no-color"}, args...)
	err := newApp(UI{Out: &out, Err: &errOut}).Run(argv)
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "phascan version dev (commit: none)\n", out)
}

func TestRules(t *testing.T) {
	out, _, err := run(t, "rules")
	require.NoError(t, err)
	for _, name := range category.Default().Names() {
		assert.Contains(t, out, name)
	}

	out, _, err = run(t, "rules", "message_access")
	require.NoError(t, err)
	assert.Contains(t, out, "sms")

	_, _, err = run(t, "rules", "nope")
	assert.Error(t, err)
}

func TestRulesMissingTable(t *testing.T) {
	_, _, err := run(t, "--rules", filepath.Join(t.TempDir(), "none.yaml"), "rules")
	assert.Error(t, err)
}

func TestPhrases(t *testing.T) {
	_, file := docsDir(t)

	out, _, err := run(t, "phrases", "--doc", file)
	require.NoError(t, err)
	assert.Contains(t, out, "intercept text message")
	assert.Contains(t, out, "intercept text messag\n")
	assert.Contains(t, out, "message_access")
}

func TestEvents(t *testing.T) {
	out, _, err := run(t, "events", decodedDir(t))
	require.NoError(t, err)
	assert.Equal(t, "typeNotificationStateChanged\ntypeViewClicked\n", out)
}

func TestClassifyDocs(t *testing.T) {
	dir, _ := docsDir(t)

	out, _, err := run(t, "classify", "--docs", dir, interceptText)
	require.NoError(t, err)
	assert.Contains(t, out, "🏷  message_access")

	_, _, err = run(t, "classify", "--docs", dir)
	assert.Error(t, err)
}

func TestImportExportRules(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "rules.db")
	yml := filepath.Join(dir, "rules.yaml")

	out, _, err := run(t, "import-rules", "--to", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully imported")

	_, _, err = run(t, "export-rules", "--from", db, "--to", yml)
	require.NoError(t, err)

	got, err := filesystem.NewRuleStore(yml).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, category.Default(), got)

	// the database is usable as the rule table
	out, _, err = run(t, "--rules", db, "rules", "message_access")
	require.NoError(t, err)
	assert.Contains(t, out, "sms")
}

func TestAnalyzeJSONAndStat(t *testing.T) {
	docs, _ := docsDir(t)
	app := decodedDir(t)
	db := filepath.Join(t.TempDir(), "reports.db")

	out, _, err := run(t, "analyze", "--docs", docs, "--format", "json", "--store", db, app)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)

	var rp pipeline.Report
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rp))
	assert.Equal(t, "com.example.spy", rp.Package)
	assert.Equal(t, "message_access", rp.Category)
	assert.Equal(t, []string{"intercept text message"}, rp.Phrases)
	assert.Equal(t, []string{"typeNotificationStateChanged", "typeViewClicked"}, rp.EventTypes)

	out, _, err = run(t, "stat", "--store", db)
	require.NoError(t, err)
	assert.Contains(t, out, "apps:         1\n")
	assert.Contains(t, out, "message_access")

	out, _, err = run(t, "stat", "--store", db, "--runs")
	require.NoError(t, err)
	assert.Contains(t, out, "1 reports")
}

func TestAnalyzeText(t *testing.T) {
	docs, _ := docsDir(t)

	out, _, err := run(t, "analyze", "--docs", docs, filepath.Dir(decodedDir(t)))
	require.NoError(t, err)
	assert.Contains(t, out, "📦 com.example.spy  🏷  message_access")
	assert.Contains(t, out, "apps:         1\n")
}

func TestAnalyzeErrors(t *testing.T) {
	_, _, err := run(t, "analyze")
	assert.Error(t, err)

	_, _, err = run(t, "analyze", t.TempDir())
	assert.Error(t, err)

	_, _, err = run(t, "analyze", "--format", "xml", decodedDir(t))
	assert.Error(t, err)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phascan.yaml")

	_, _, err := run(t, "init-config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestSortApk(t *testing.T) {
	dir := t.TempDir()
	apk := func(name string) string {
		path := filepath.Join(dir, name)
		writeFile(t, path, nil)
		return path
	}

	results := []pipeline.Result{
		{Source: apk("a.apk"), Report: pipeline.Report{Package: "com.example.spy", Descriptions: []string{"d"}, Category: "message_access"}},
		{Source: apk("b.apk"), Report: pipeline.Report{Package: "com.example.vague", Descriptions: []string{"d"}, Category: category.Uncategorized}},
		{Source: apk("c.apk"), Report: pipeline.Report{Package: "com.example.mute", Descriptions: []string{"d"}, Category: category.NoEvidence}},
		{Source: apk("d.apk"), Report: pipeline.Report{Package: "com.example.empty", Category: category.NoEvidence}},
		{Source: apk("e.apk"), Err: errors.New("decode")},
	}
	for _, res := range results {
		require.NoError(t, sortApk(res))
	}

	assert.FileExists(t, filepath.Join(dir, dirSuccessful, "com.example.spy.apk"))
	assert.FileExists(t, filepath.Join(dir, "b.apk"))
	assert.NoFileExists(t, filepath.Join(dir, dirSuccessful, "com.example.vague.apk"))
	assert.FileExists(t, filepath.Join(dir, dirUseless, "com.example.mute.apk"))
	assert.FileExists(t, filepath.Join(dir, dirUseless, "com.example.empty.apk"))
	assert.FileExists(t, filepath.Join(dir, dirUseless, "e.apk"))

	// only packages with descriptions are samples
	samples, err := os.ReadFile(filepath.Join(dir, samplesFile))
	require.NoError(t, err)
	assert.Equal(t, "com.example.mute\ncom.example.spy\ncom.example.vague\n", string(samples))
}

func TestSortApkKeepsSamplesUnique(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"x.apk", "y.apk"} {
		path := filepath.Join(dir, name)
		writeFile(t, path, nil)
		res := pipeline.Result{Source: path, Report: pipeline.Report{Package: "com.example.spy", Descriptions: []string{"d"}, Category: category.Uncategorized}}
		require.NoError(t, sortApk(res))
	}

	samples, err := os.ReadFile(filepath.Join(dir, samplesFile))
	require.NoError(t, err)
	assert.Equal(t, "com.example.spy\n", string(samples))
}

func TestSortApkIgnoresDecodedDir(t *testing.T) {
	dir := decodedDir(t)
	require.NoError(t, sortApk(pipeline.Result{Source: dir, Report: pipeline.Report{Category: category.NoEvidence}}))
	assert.DirExists(t, dir)
}

func TestBash(t *testing.T) {
	out, _, err := run(t, "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -o default -F _phascan_autocomplete phascan")
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	cfg := config.Default()
	cfg.Rules.Path = path
	e := &env{cfg: cfg, logger: zap.NewNop(), pool: &Pool{}}

	a := pipeline.New(parse.Docs{})

	// missing table: the built in one stays
	e.reload(a)
	assert.Equal(t, category.Default().Names(), a.Classifier().Table().Names())

	writeFile(t, path, []byte("categories:\n  - name: auto_click\n    triggers: [click]\n"))
	e.reload(a)
	assert.Equal(t, []string{"auto_click"}, a.Classifier().Table().Names())
}
