package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAndWrite(t *testing.T) {
	run := NewRun()
	run.Observe("agent-1", OutcomeSaved)
	run.Observe("agent-1", OutcomeSaved)
	run.Observe("agent-1", OutcomeFiltered)
	run.ObserveFiltered("agent-1", "insufficient_chars")
	run.Finish("agent-1", 1500*time.Millisecond, time.Unix(1714564800, 0))

	if got := testutil.ToFloat64(run.posts.WithLabelValues("agent-1", OutcomeSaved)); got != 2 {
		t.Fatalf("saved = %v", got)
	}

	path := filepath.Join(t.TempDir(), "textfile", "reelscribe.prom")
	if err := run.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`reelscribe_posts_total{agent="agent-1",outcome="saved"} 2`,
		`reelscribe_filtered_total{agent="agent-1",reason="insufficient_chars"} 1`,
		`reelscribe_run_duration_seconds{agent="agent-1"} 1.5`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestNilRunIsNoop(t *testing.T) {
	var run *Run
	run.Observe("a", OutcomeSaved)
	run.Finish("a", time.Second, time.Now())
	if err := run.WriteTextfile("/nonexistent/x.prom"); err != nil {
		t.Fatalf("nil run should not write: %v", err)
	}
}
