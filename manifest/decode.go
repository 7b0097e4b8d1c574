package manifest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Decoder decodes application packages with apktool.
type Decoder struct {
	// Path of the apktool executable.
	Path    string
	Timeout time.Duration
}

// Decode runs `apktool d apk -o out -f`.
func (d Decoder) Decode(ctx context.Context, apk, out string) error {
	path := d.Path
	if path == "" {
		path = "apktool"
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "d", apk, "-o", out, "-f")
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("apktool failed on %s: %w: %s", apk, err, strings.TrimSpace(output.String()))
	}

	return nil
}
