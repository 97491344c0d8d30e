package localmedia

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

func TestParseProbeOutput(t *testing.T) {
	raw := []byte(`{
  "streams": [
    {"codec_type": "audio", "codec_name": "aac"},
    {"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "duration": "12.0"}
  ],
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "12.480000", "bit_rate": "812345"}
}`)
	res, err := ParseProbeOutput(raw)
	if err != nil {
		t.Fatalf("ParseProbeOutput: %v", err)
	}
	if res.DurationSeconds != 12.48 {
		t.Fatalf("duration: want=12.48 got=%v", res.DurationSeconds)
	}
	if res.VideoCodec != "h264" || res.Width != 1280 || res.Height != 720 || res.BitRate != 812345 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestParseProbeOutputStreamDurationFallback(t *testing.T) {
	raw := []byte(`{"streams":[{"codec_type":"video","codec_name":"vp9","duration":"3.5"}],"format":{"format_name":"webm"}}`)
	res, err := ParseProbeOutput(raw)
	if err != nil {
		t.Fatalf("ParseProbeOutput: %v", err)
	}
	if res.DurationSeconds != 3.5 {
		t.Fatalf("duration: want=3.5 got=%v", res.DurationSeconds)
	}
}

func TestParseProbeOutputRejectsNonVideo(t *testing.T) {
	raw := []byte(`{"streams":[{"codec_type":"audio","codec_name":"mp3"}],"format":{"duration":"30"}}`)
	if _, err := ParseProbeOutput(raw); err == nil {
		t.Fatalf("audio-only input should be rejected")
	}
	if _, err := ParseProbeOutput([]byte("not json")); err == nil {
		t.Fatalf("garbage input should be rejected")
	}
}

func TestSpoolWritesAndCleansUp(t *testing.T) {
	m := New(logger.Nop(), Config{WorkRoot: t.TempDir()})
	path, n, cleanup, err := m.Spool(context.Background(), strings.NewReader("hello"), "mp4")
	if err != nil {
		t.Fatalf("Spool: %v", err)
	}
	if n != 5 || !strings.HasSuffix(path, ".mp4") {
		t.Fatalf("Spool: n=%d path=%s", n, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("spooled file missing: %v", err)
	}
	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("cleanup should remove the file, stat err=%v", err)
	}
}
