package manifest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestXML = `<?xml version="1.0" encoding="utf-8" standalone="no"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android" package="com.example.reader">
    <application android:label="@string/app_name">
        <service android:name=".Other" android:exported="false"/>
        <service android:name=".ReaderService" android:permission="android.permission.BIND_ACCESSIBILITY_SERVICE">
            <intent-filter>
                <action android:name="android.accessibilityservice.AccessibilityService"/>
            </intent-filter>
            <meta-data android:name="android.accessibilityservice" android:resource="@xml/reader_config"/>
        </service>
        <service android:name=".ClickService" android:permission="android.permission.BIND_ACCESSIBILITY_SERVICE">
            <meta-data android:name="other" android:resource="@xml/click_config"/>
        </service>
    </application>
</manifest>`

const readerConfigXML = `<?xml version="1.0" encoding="utf-8"?>
<accessibility-service xmlns:android="http://schemas.android.com/apk/res/android"
    android:description="@string/reader_description"
    android:accessibilityEventTypes="typeViewClicked|typeViewFocused"
    android:accessibilityFeedbackType="feedbackSpoken"/>`

const clickConfigXML = `<?xml version="1.0" encoding="utf-8"?>
<accessibility-service xmlns:android="http://schemas.android.com/apk/res/android"
    android:description="Clicks buttons for you."
    android:accessibilityEventTypes="typeWindowStateChanged|typeViewClicked"/>`

const stringsXML = `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="app_name">Reader</string>
    <string name="reader_description">It reads the screen aloud and doesn\'t store anything.</string>
</resources>`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func decodedApp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "AndroidManifest.xml", manifestXML)
	writeFile(t, dir, "res/xml/reader_config.xml", readerConfigXML)
	writeFile(t, dir, "res/xml/click_config.xml", clickConfigXML)
	writeFile(t, dir, "res/values/strings.xml", stringsXML)
	return dir
}

func TestRead(t *testing.T) {
	dir := decodedApp(t)

	m, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "com.example.reader", m.Package)
	assert.Len(t, m.Application.Services, 3)

	services := m.AccessibilityServices()
	require.Len(t, services, 2)
	assert.Equal(t, ".ReaderService", services[0].Name)

	res, ok := services[0].ConfigResource()
	assert.True(t, ok)
	assert.Equal(t, "@xml/reader_config", res)

	res, ok = services[1].ConfigResource()
	assert.True(t, ok)
	assert.Equal(t, "@xml/click_config", res)
}

func TestReadNoManifest(t *testing.T) {
	_, err := Read(t.TempDir())
	assert.ErrorIs(t, err, ErrNoManifest)
}

func TestConfigPathsNoService(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AndroidManifest.xml", `<manifest package="com.plain"><application/></manifest>`)

	m, err := Read(dir)
	require.NoError(t, err)

	_, err = ConfigPaths(dir, m)
	assert.ErrorIs(t, err, ErrNoAccessibilityService)
}

func TestDescriptions(t *testing.T) {
	dir := decodedApp(t)
	m, err := Read(dir)
	require.NoError(t, err)

	got, err := Descriptions(dir, m)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"It reads the screen aloud and doesn't store anything.",
		"Clicks buttons for you.",
	}, got)
}

func TestDescriptionsMissingConfig(t *testing.T) {
	dir := decodedApp(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "res", "xml", "reader_config.xml")))

	m, err := Read(dir)
	require.NoError(t, err)

	got, err := Descriptions(dir, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"Clicks buttons for you."}, got)
}

func TestConfigDescriptionsUsesReadConfigs(t *testing.T) {
	dir := decodedApp(t)
	m, err := Read(dir)
	require.NoError(t, err)

	configs, err := Configs(dir, m)
	require.NoError(t, err)

	// the service configurations are not read again
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "res", "xml")))

	got, err := ConfigDescriptions(dir, configs)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"It reads the screen aloud and doesn't store anything.",
		"Clicks buttons for you.",
	}, got)
}

func TestDescriptionsNone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AndroidManifest.xml", manifestXML)

	m, err := Read(dir)
	require.NoError(t, err)

	got, err := Descriptions(dir, m)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEventTypes(t *testing.T) {
	dir := decodedApp(t)
	m, err := Read(dir)
	require.NoError(t, err)

	configs, err := Configs(dir, m)
	require.NoError(t, err)

	assert.Equal(t, []string{"typeViewClicked", "typeViewFocused", "typeWindowStateChanged"}, EventTypes(configs))
}

func TestEventTypesAllMask(t *testing.T) {
	got := EventTypes([]ServiceConfig{{EventTypes: "typeAllMask|typeSomethingNew"}})
	assert.Equal(t, append(append([]string{}, EventTypeNames...), "typeSomethingNew"), got)
}

func TestEventTypesEmpty(t *testing.T) {
	got := EventTypes(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "don't", unescape(`don\'t`))
	assert.Equal(t, "quoted text", unescape(`"quoted text"`))
	assert.Equal(t, "trimmed", unescape("\n   trimmed  \n"))
}

func TestDecoder(t *testing.T) {
	ok, err := exec.LookPath("true")
	if err != nil {
		t.Skip("no true executable")
	}
	fail, err := exec.LookPath("false")
	if err != nil {
		t.Skip("no false executable")
	}

	ctx := context.Background()

	d := Decoder{Path: ok, Timeout: time.Second}
	assert.NoError(t, d.Decode(ctx, "app.apk", t.TempDir()))

	d = Decoder{Path: fail, Timeout: time.Second}
	err = d.Decode(ctx, "app.apk", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apktool failed on app.apk")
}
