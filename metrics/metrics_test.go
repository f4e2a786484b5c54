package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestObserveFrameUpdatesGauges(t *testing.T) {
	c := NewCollectors()
	c.FPS.Set(59.5)
	c.ObserveFrame(16*time.Millisecond, 120, 45)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{"softbody_fps", "softbody_live_particles", "softbody_live_beams", "softbody_frame_duration_seconds"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics output to contain %q, got:\n%s", want, body)
		}
	}
}

func TestDroppedFramesCounter(t *testing.T) {
	c := NewCollectors()
	c.DroppedFrames.Inc()
	c.DroppedFrames.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "softbody_dropped_frames_total 2") {
		t.Fatalf("expected dropped_frames_total to read 2, got:\n%s", rec.Body.String())
	}
}
