package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cursork/cinlook/uitest"
)

const (
	sessionName = "cinlook-test"
	screenW     = 120
	screenH     = 40
)

// TestTUI drives the built binary inside tmux
func TestTUI(t *testing.T) {
	if testing.Short() {
		t.Skip("UI test")
	}
	if err := uitest.RequireTmux(); err != nil {
		t.Skip(err)
	}

	t.Log("Building cinlook...")
	if err := exec.Command("go", "build", "-o", "cinlook", ".").Run(); err != nil {
		t.Fatalf("Failed to build cinlook: %v", err)
	}
	defer os.Remove("cinlook")

	// An empty config keeps the user's own file out of the run
	emptyConfig := filepath.Join(t.TempDir(), "cinlook.toml")
	if err := os.WriteFile(emptyConfig, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := "./cinlook --config " + emptyConfig +
		" --compose cin/testdata/phonetic-mini.cin --reference cin/testdata/cangjie-mini.cin" +
		" --log-level debug --log-file test-reports/cinlook.log"
	runner, err := uitest.NewRunner(t, sessionName, screenW, screenH, cmd, "test-reports")
	if err != nil {
		t.Fatalf("Failed to create runner: %v", err)
	}
	defer runner.Close()

	runner.WaitFor("cinlook", 3*time.Second)
	runner.Snapshot("Initial state")

	runner.Test("Initial render shows both tables", func() bool {
		return runner.Contains("注音 → 倉頡")
	})

	// Debug pane
	runner.SendKeys("C-]")
	runner.Sleep(100 * time.Millisecond)
	runner.SendKeys("d")
	runner.Sleep(300 * time.Millisecond)
	runner.Snapshot("After C-] d (debug pane open)")

	runner.Test("C-] d opens debug pane", func() bool {
		return runner.Contains("debug")
	})

	runner.Test("Focused pane has double border", func() bool {
		return runner.Contains("╔")
	})

	runner.SendKeys("Escape")
	runner.Sleep(300 * time.Millisecond)

	runner.Test("Esc closes debug pane", func() bool {
		return !runner.Contains("╔")
	})

	// ㄅㄚ then space is ambiguous
	runner.SendText("18")
	runner.Sleep(100 * time.Millisecond)
	runner.SendKeys("Space")
	runner.Sleep(300 * time.Millisecond)
	runner.Snapshot("Candidate popup for ㄅㄚ")

	runner.Test("Space opens candidate popup", func() bool {
		return runner.Contains("八：卜大月") && runner.Contains("巴：卜口月")
	})

	runner.SendKeys("2")
	runner.Sleep(300 * time.Millisecond)
	runner.Snapshot("After picking candidate 2")

	runner.Test("Digit picks a candidate", func() bool {
		return runner.Contains("巴：卜口月") && !runner.Contains("八：卜大月")
	})

	// A declared tone mark commits directly
	runner.SendText("184")
	runner.Sleep(300 * time.Millisecond)
	runner.Snapshot("After ㄅㄚˋ")

	runner.Test("Tone mark commits", func() bool {
		return runner.Contains("爸：金戈金")
	})

	runner.SendKeys("Enter")
	runner.Sleep(200 * time.Millisecond)

	runner.Test("Enter finishes the line", func() bool {
		return runner.Contains("» 巴爸")
	})

	// Reverse mode
	runner.SendKeys("C-]")
	runner.Sleep(100 * time.Millisecond)
	runner.SendKeys("m")
	runner.Sleep(200 * time.Millisecond)

	runner.Test("C-] m switches to reverse mode", func() bool {
		return runner.Contains("reverse ›")
	})

	runner.SendLine("媽 密")
	runner.Sleep(300 * time.Millisecond)
	runner.Snapshot("After annotating 媽 密")

	runner.Test("Reverse mode annotates text", func() bool {
		return runner.Contains("媽：女尸尸") && runner.Contains("密：十一山人竹")
	})

	// Command palette
	runner.SendKeys("C-]")
	runner.Sleep(100 * time.Millisecond)
	runner.SendKeys(":")
	runner.Sleep(300 * time.Millisecond)
	runner.Snapshot("After C-] : (command palette)")

	runner.Test("C-] : opens command palette", func() bool {
		return runner.Contains("Commands") && runner.Contains("reload")
	})

	runner.SendText("info")
	runner.Sleep(200 * time.Millisecond)
	runner.SendKeys("Enter")
	runner.Sleep(500 * time.Millisecond)
	runner.Snapshot("Table info pane")

	runner.Test("Selecting info opens table info", func() bool {
		return runner.Contains("table info") && !runner.Contains("Commands")
	})

	runner.SendKeys("Escape")
	runner.Sleep(200 * time.Millisecond)

	// Keyname list
	runner.SendKeys("C-]")
	runner.Sleep(100 * time.Millisecond)
	runner.SendKeys("k")
	runner.Sleep(300 * time.Millisecond)
	runner.Snapshot("Keyname pane")

	runner.Test("C-] k lists keynames", func() bool {
		return runner.Contains("keynames") && runner.Contains("ㄅ")
	})

	runner.SendKeys("Escape")
	runner.Sleep(200 * time.Millisecond)

	runner.SendKeys("C-c")
	runner.Sleep(300 * time.Millisecond)

	runner.GenerateReport()
}
