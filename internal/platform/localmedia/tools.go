package localmedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

// Tools wraps the ffprobe binary and scratch-file handling used while an
// upload is being accepted.
type Tools interface {
	AssertReady(ctx context.Context) error
	// Spool copies r into a scratch file and returns its path, the bytes
	// written, and a cleanup func that is always safe to call.
	Spool(ctx context.Context, r io.Reader, suffix string) (path string, size int64, cleanup func(), err error)
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

type Config struct {
	FFProbePath string
	WorkRoot    string
	Timeout     time.Duration
}

type ProbeResult struct {
	DurationSeconds float64 `json:"durationSeconds"`
	FormatName      string  `json:"formatName,omitempty"`
	VideoCodec      string  `json:"videoCodec,omitempty"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	BitRate         int64   `json:"bitRate,omitempty"`
}

type tools struct {
	log         *logger.Logger
	ffprobePath string
	workRoot    string
	timeout     time.Duration
}

func New(log *logger.Logger, cfg Config) Tools {
	if cfg.FFProbePath == "" {
		cfg.FFProbePath = "ffprobe"
	}
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = filepath.Join(os.TempDir(), "streamhub-media")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &tools{
		log:         log.With("service", "MediaTools"),
		ffprobePath: cfg.FFProbePath,
		workRoot:    cfg.WorkRoot,
		timeout:     cfg.Timeout,
	}
}

func (m *tools) AssertReady(ctx context.Context) error {
	if _, err := exec.LookPath(m.ffprobePath); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", m.ffprobePath, err)
	}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return fmt.Errorf("create workRoot: %w", err)
	}
	return nil
}

func (m *tools) Spool(ctx context.Context, r io.Reader, suffix string) (string, int64, func(), error) {
	noop := func() {}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return "", 0, noop, fmt.Errorf("mkdir workRoot: %w", err)
	}
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	f, err := os.CreateTemp(m.workRoot, "upload-*"+suffix)
	if err != nil {
		return "", 0, noop, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", 0, noop, fmt.Errorf("spool upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return "", 0, noop, err
	}
	return f.Name(), n, cleanup, nil
}

func (m *tools) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	if path == "" {
		return nil, fmt.Errorf("path required")
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		var stderr string
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(ee.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed: %w; stderr=%s", err, stderr)
	}
	return ParseProbeOutput(out)
}

type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// ParseProbeOutput reads `ffprobe -print_format json` output. The container
// duration wins; the first video stream's duration is the fallback.
func ParseProbeOutput(raw []byte) (*ProbeResult, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}
	res := &ProbeResult{FormatName: out.Format.FormatName}
	res.DurationSeconds, _ = strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
	res.BitRate, _ = strconv.ParseInt(strings.TrimSpace(out.Format.BitRate), 10, 64)

	hasVideo := false
	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		hasVideo = true
		res.VideoCodec = s.CodecName
		res.Width = s.Width
		res.Height = s.Height
		if res.DurationSeconds <= 0 {
			res.DurationSeconds, _ = strconv.ParseFloat(strings.TrimSpace(s.Duration), 64)
		}
		break
	}
	if !hasVideo {
		return nil, fmt.Errorf("no video stream found")
	}
	if res.DurationSeconds <= 0 {
		return nil, fmt.Errorf("could not determine video duration")
	}
	return res, nil
}
