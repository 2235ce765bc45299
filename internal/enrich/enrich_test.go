package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reelscribe/internal/config"
	"reelscribe/internal/logging"
	"reelscribe/internal/services/llm"
)

type fakeCompleter struct {
	responses []string
	err       error
	prompts   []llm.Prompt
}

func (f *fakeCompleter) Complete(_ context.Context, prompt llm.Prompt) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	out := f.responses[0]
	f.responses = f.responses[1:]
	return out, nil
}

type unconfigured struct{ fakeCompleter }

func (unconfigured) Configured() bool { return false }

func testSettings() Settings {
	cfg := config.Default()
	return SettingsFromConfig(&cfg)
}

func newEnricher(c Completer) *Enricher {
	return New(c, testSettings(), logging.NewNop())
}

func TestWithFallback(t *testing.T) {
	ctx := context.Background()
	val, used := WithFallback(ctx,
		func(context.Context) (int, error) { return 7, nil },
		func(v int) bool { return v > 5 },
		func() int { return 1 },
	)
	if val != 7 || !used {
		t.Fatalf("expected op value, got %d %v", val, used)
	}

	val, used = WithFallback(ctx,
		func(context.Context) (int, error) { return 3, nil },
		func(v int) bool { return v > 5 },
		func() int { return 1 },
	)
	if val != 1 || used {
		t.Fatalf("expected fallback on validation failure, got %d %v", val, used)
	}

	val, used = WithFallback(ctx,
		func(context.Context) (int, error) { return 9, errors.New("boom") },
		nil,
		func() int { return 1 },
	)
	if val != 1 || used {
		t.Fatalf("expected fallback on error, got %d %v", val, used)
	}
}

func TestCleanTextBounds(t *testing.T) {
	raw := strings.Repeat("سلام ", 10) // 50 runes
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"accepted", strings.Repeat("ب", 30), strings.Repeat("ب", 30)},
		{"too short", strings.Repeat("ب", 19), raw},
		{"min boundary", strings.Repeat("ب", 20), strings.Repeat("ب", 20)},
		{"max boundary", strings.Repeat("ب", 100), strings.Repeat("ب", 100)},
		{"too long", strings.Repeat("ب", 101), raw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnricher(&fakeCompleter{responses: []string{tt.response}})
			if got := e.CleanText(context.Background(), raw); got != tt.want {
				t.Fatalf("CleanText returned %d runes, want %d", len([]rune(got)), len([]rune(tt.want)))
			}
		})
	}
}

func TestCleanTextWithoutBackend(t *testing.T) {
	for name, c := range map[string]Completer{
		"nil":          nil,
		"unconfigured": &unconfigured{},
		"erroring":     &fakeCompleter{err: errors.New("503")},
	} {
		t.Run(name, func(t *testing.T) {
			e := newEnricher(c)
			if got := e.CleanText(context.Background(), "متن خام"); got != "متن خام" {
				t.Fatalf("expected input unchanged, got %q", got)
			}
		})
	}
	if newEnricher(&unconfigured{}).ModelEnabled() {
		t.Fatal("unconfigured completer must disable the model")
	}
}

func TestGenerateTitleValidation(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		ok       bool
	}{
		{"clean", "«آپارتمان لوکس دو خوابه در مرکز دبی»", "آپارتمان لوکس دو خوابه در مرکز دبی", true},
		{"label stripped", "عنوان: ویلای ساحلی با استخر خصوصی در پالم", "ویلای ساحلی با استخر خصوصی در پالم", true},
		{"too few words", "ویلای لوکس دبی", "", false},
		{"too many words", strings.Repeat("کلمه ", 21), "", false},
		{"generic", "املاک ویژه شماره یک در دبی", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnricher(&fakeCompleter{responses: []string{tt.response}})
			got, ok := e.GenerateTitle(context.Background(), "محتوای پست", "", "agent")
			if got != tt.want || ok != tt.ok {
				t.Fatalf("GenerateTitle = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestGenerateTitleSkipsEmptyBody(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"a b c d e"}}
	e := newEnricher(fake)
	if _, ok := e.GenerateTitle(context.Background(), "  ", "", ""); ok {
		t.Fatal("expected absent title for empty body")
	}
	if len(fake.prompts) != 0 {
		t.Fatal("model must not be called for empty body")
	}
}

func TestTitlePromptTruncatesInputs(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"یک دو سه چهار پنج"}}
	e := newEnricher(fake)
	body := strings.Repeat("ب", 600)
	e.GenerateTitle(context.Background(), body, "", "")
	if len(fake.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(fake.prompts))
	}
	prompt := fake.prompts[0].User
	if strings.Contains(prompt, strings.Repeat("ب", 501)) {
		t.Fatal("body must be truncated to 500 runes")
	}
	if !strings.Contains(prompt, "بدون کپشن") {
		t.Fatal("empty caption placeholder expected in prompt")
	}
}

func TestFallbackTitle(t *testing.T) {
	e := newEnricher(nil)
	tests := []struct {
		body string
		want string
	}{
		{"این آپارتمان زیبا", "آپارتمان منحصر به فرد در دبی - پست 3"},
		{"ویلا با استخر", "ویلای لوکس در دبی - پست 3"},
		{"دفتر کار اداری", "دفتر تجاری مدرن در دبی - پست 3"},
		{"هیچ کلیدواژه", "املاک استثنایی در دبی - پست 3"},
		{strings.Repeat("x", 100) + "ویلا", "املاک استثنایی در دبی - پست 3"},
	}
	for _, tt := range tests {
		if got := e.FallbackTitle(tt.body, 3); got != tt.want {
			t.Errorf("FallbackTitle(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestEnhanceCaption(t *testing.T) {
	e := newEnricher(nil)
	got := e.EnhanceCaption("", []string{"a", "@b"}, []string{"x", "y"})
	want := "بدون کپشن\n\n👥 منشن‌ها: @a, @b\n\n🏷️ هشتگ‌ها: #x, #y"
	if got != want {
		t.Fatalf("EnhanceCaption = %q, want %q", got, want)
	}
	if got := e.EnhanceCaption("hello", nil, nil); got != "hello" {
		t.Fatalf("expected bare caption, got %q", got)
	}
}

func TestIsGenericTitle(t *testing.T) {
	e := newEnricher(nil)
	for title, want := range map[string]bool{
		"":                         true,
		"املاک ویژه شماره 4":       true,
		"پست 12":                   true,
		"ویلای ساحلی در جمیرا":     false,
		"شماره تماس املاک ویژه ما": true,
	} {
		if got := e.IsGenericTitle(title); got != want {
			t.Errorf("IsGenericTitle(%q) = %v, want %v", title, got, want)
		}
	}
}

func TestEnrichWithoutBackendIsDeterministic(t *testing.T) {
	e := newEnricher(nil)
	res := e.Enrich(context.Background(), Input{
		Transcript: "یک آپارتمان دو خوابه",
		Mentions:   []string{"friend"},
		PostNumber: 2,
	})
	if res.Cleaned != res.Original {
		t.Fatal("cleaned text must equal original without a backend")
	}
	if res.TitleGenerated || res.Title != "آپارتمان منحصر به فرد در دبی - پست 2" {
		t.Fatalf("unexpected title %q", res.Title)
	}
	if !strings.HasPrefix(res.Caption, "بدون کپشن") {
		t.Fatalf("unexpected caption %q", res.Caption)
	}
}
