package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupTestEnv points the settings path at a fresh temp dir.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("SPLITTYPING_CONFIG", path)
	return path
}

func runCmd(t *testing.T, stdin string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	verbose = false
	configPath = ""
	globalConfig = nil

	err := Execute(context.Background())

	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		exitCode = 1
		if stderr == "" {
			stderr = err.Error()
		} else {
			stderr += err.Error()
		}
	}

	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
			return
		}
		f.Value.Set(f.DefValue)
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestSplit_Args(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "", "split", "-o", "json", "你好！（兴奋地说）我今天很高兴……")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var got []string
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	want := []string{"你好！", "（兴奋地说）我今天很高兴……"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("split mismatch (-want +got):\n%s", diff)
	}
}

func TestSplit_Stdin(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "你好。再见。", "split", "-o", "raw")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "你好\n再见\n" {
		t.Errorf("stdout = %q, want %q", stdout, "你好\n再见\n")
	}
}

func TestSplit_SimpleMode(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "", "split", "--mode", "simple", "--sep", "||", "-o", "raw", "第一句。||第二句，")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "第一句\n第二句\n" {
		t.Errorf("stdout = %q", stdout)
	}

	// Escaped newline separator from the command line.
	stdout, stderr, code = runCmd(t, "a\nb", "split", "-m", "simple", "--sep", `\n`, "-o", "raw")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "a\nb\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestSplit_MaxRun(t *testing.T) {
	setupTestEnv(t)

	input := "今天天气很好，我们一起去公园散步吧，好不好呀"
	stdout, stderr, code := runCmd(t, "", "split", "--max-run", "5", "-o", "raw", input)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	want := "今天天气很好\n我们一起去公园散步吧\n好不好呀\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}

	if _, _, code := runCmd(t, "", "split", "--max-run", "0", "x"); code == 0 {
		t.Error("expected non-zero exit for --max-run 0")
	}
}

func TestSplit_Batch(t *testing.T) {
	setupTestEnv(t)

	path := filepath.Join(t.TempDir(), "replies.yaml")
	if err := os.WriteFile(path, []byte("texts:\n  - 你好。再见。\n  - 真的吗？太好了！\n"), 0644); err != nil {
		t.Fatal(err)
	}
	stdout, stderr, code := runCmd(t, "", "split", "-f", path, "-o", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var got [][]string
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	want := [][]string{{"你好", "再见"}, {"真的吗？", "太好了！"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestSplit_Pretty(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "", "split", "--pretty", "你好。再见。")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"[1/2] 你好", "[2/2] 再见", "2 fragments"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestSplit_BadFlags(t *testing.T) {
	setupTestEnv(t)

	if _, _, code := runCmd(t, "", "split", "--mode", "fancy", "x"); code == 0 {
		t.Error("expected non-zero exit for unknown mode")
	}
	if _, _, code := runCmd(t, "", "split", "-o", "table", "x"); code == 0 {
		t.Error("expected non-zero exit for unknown output format")
	}
}

func TestSplit_UsesSettingsFile(t *testing.T) {
	path := setupTestEnv(t)
	if err := os.WriteFile(path, []byte("typing_settings:\n  split_mode: simple\nsegment:\n  separators: [\"/\"]\n"), 0600); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCmd(t, "", "split", "-o", "raw", "一/二")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "一\n二\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestPreview_NoWait(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "", "preview", "--no-wait", "真的吗？太好了！")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"[1/2] 真的吗？", "typing 400ms, pause 500ms", "[2/2] 太好了！", "total 1.3s"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestPreview_Paced(t *testing.T) {
	path := setupTestEnv(t)
	// Disable every wait so the test runs instantly.
	settings := "typing_settings:\n  char_delay: 0\n  segment_pause: 0\n"
	if err := os.WriteFile(path, []byte(settings), 0600); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCmd(t, "你好。再见。", "preview")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "[1/2] 你好") || !strings.Contains(stdout, "[2/2] 再见") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestPreview_NotSplit(t *testing.T) {
	path := setupTestEnv(t)
	if err := os.WriteFile(path, []byte("typing_settings:\n  max_segment_length: 3\n"), 0600); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCmd(t, "", "preview", "--no-wait", "这句话太长了")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "这句话太长了\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConfig_InitAndShow(t *testing.T) {
	path := setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "", "config", "init")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, path) {
		t.Errorf("expected path in output, got: %s", stdout)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file not written: %v", err)
	}

	if _, stderr, code := runCmd(t, "", "config", "init"); code == 0 || !strings.Contains(stderr, "already exists") {
		t.Errorf("second init: exit %d, stderr %q", code, stderr)
	}
	if _, stderr, code := runCmd(t, "", "config", "init", "--force"); code != 0 {
		t.Errorf("init --force: exit %d: %s", code, stderr)
	}

	stdout, stderr, code = runCmd(t, "", "config", "show", "-o", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var shown map[string]any
	if err := json.Unmarshal([]byte(stdout), &shown); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	typingSettings, ok := shown["typing_settings"].(map[string]any)
	if !ok {
		t.Fatalf("missing typing_settings in %v", shown)
	}
	if typingSettings["char_delay"] != 0.1 {
		t.Errorf("char_delay = %v, want 0.1", typingSettings["char_delay"])
	}
}

func TestConfig_InitKeepsNewlineSeparator(t *testing.T) {
	setupTestEnv(t)

	if _, stderr, code := runCmd(t, "", "config", "init"); code != 0 {
		t.Fatalf("init: exit %d: %s", code, stderr)
	}
	stdout, stderr, code := runCmd(t, "甲\n乙\n丙", "split", "-m", "simple", "-o", "raw")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "甲\n乙\n丙\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConfig_ExplicitPath(t *testing.T) {
	setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")

	if _, stderr, code := runCmd(t, "", "--config", path, "config", "init"); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file not written at --config path: %v", err)
	}
}

func TestConfig_InvalidFile(t *testing.T) {
	path := setupTestEnv(t)
	if err := os.WriteFile(path, []byte("typing_settings:\n  split_mode: fancy\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, stderr, code := runCmd(t, "", "split", "x"); code == 0 || !strings.Contains(stderr, "split_mode") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestVersion(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "", "version")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, "splittyping") {
		t.Fatalf("expected 'splittyping', got: %s", stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "", "version", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, `"version"`) {
		t.Fatalf("expected JSON, got: %s", stdout)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"||", "||"},
		{`\n`, "\n"},
		{`a"b\t`, "a\"b\t"},
		{`\"`, `"`},
		{`say \"hi\"\n`, "say \"hi\"\n"},
		{`\\"`, `\"`},
	}
	for _, tt := range tests {
		got, err := unescape(tt.in)
		if err != nil {
			t.Errorf("unescape(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := unescape(`trailing\`); err == nil {
		t.Error("unescape of a trailing backslash should fail")
	}
}
