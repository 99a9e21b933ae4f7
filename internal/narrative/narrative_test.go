package narrative

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Simplici0/discovery/internal/pricing"
	"github.com/Simplici0/discovery/internal/profile"
)

type fakeGenerator struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
}

type reply struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", errors.New("no reply scripted")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.text, r.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type temporaryErr struct{}

func (temporaryErr) Error() string   { return "connection reset" }
func (temporaryErr) Temporary() bool { return true }

func newTestComposer(gen Generator) *Composer {
	return NewComposer(gen, zap.NewNop(), WithRetries(2, time.Millisecond), WithTimeout(time.Second))
}

func TestBuildPrompt(t *testing.T) {
	p := profile.Sample()
	b := pricing.CalculateBudget(p)

	prompt, err := BuildPrompt(p, b, "EUR")
	require.NoError(t, err)

	assert.Contains(t, prompt, "- Empresa: "+p.CompanyName)
	assert.Contains(t, prompt, "- Madurez Digital: 4/10")
	assert.Contains(t, prompt, "- "+profile.ERP.DisplayName()+"\n")
	assert.NotContains(t, prompt, "- "+profile.GMAO.DisplayName()+"\n")
	assert.Contains(t, prompt, `"warehouseCount": 1`)
	assert.Contains(t, prompt, "Total recurrente anual:")
	assert.Contains(t, prompt, "Mantenimiento Perpetuo")
}

func TestBuildPromptWithoutModules(t *testing.T) {
	prompt, err := BuildPrompt(profile.New(), pricing.BudgetResult{}, "EUR")
	require.NoError(t, err)

	assert.Contains(t, prompt, "(sin módulos seleccionados)")
	assert.Contains(t, prompt, "Inversión Inicial (Servicios): 0 €")
}

func TestComposeReturnsGeneratedText(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{text: "  RESUMEN EJECUTIVO\n- ROI  \n"}}}
	c := newTestComposer(gen)

	got := c.Compose(context.Background(), profile.Sample(), pricing.CalculateBudget(profile.Sample()))

	assert.Equal(t, "RESUMEN EJECUTIVO\n- ROI", got)
	assert.Equal(t, 1, gen.calls())
	assert.True(t, strings.HasPrefix(gen.prompts[0], "Eres un Consultor"))
}

func TestComposeRetriesTransientFailures(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{
		{err: genai.APIError{Code: 503, Message: "overloaded"}},
		{err: temporaryErr{}},
		{text: "informe"},
	}}
	c := newTestComposer(gen)

	got := c.Compose(context.Background(), profile.Sample(), pricing.BudgetResult{})

	assert.Equal(t, "informe", got)
	assert.Equal(t, 3, gen.calls())
}

func TestComposeFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		replies   []reply
		wantCalls int
	}{
		{"permanent error", []reply{{err: genai.APIError{Code: 400, Message: "bad request"}}}, 1},
		{"retries exhausted", []reply{
			{err: genai.APIError{Code: 429}},
			{err: genai.APIError{Code: 500}},
			{err: genai.APIError{Code: 502}},
		}, 3},
		{"empty answer", []reply{{text: "   "}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{replies: tt.replies}
			got := newTestComposer(gen).Compose(context.Background(), profile.Sample(), pricing.BudgetResult{})

			assert.Equal(t, Fallback, got)
			assert.Equal(t, tt.wantCalls, gen.calls())
		})
	}
}

func TestComposeWithoutGenerator(t *testing.T) {
	c := NewComposer(nil, nil)

	assert.False(t, c.Enabled())
	assert.Equal(t, Fallback, c.Compose(context.Background(), profile.Sample(), pricing.BudgetResult{}))
}

func TestComposeTimesOut(t *testing.T) {
	c := NewComposer(blockingGenerator{}, zap.NewNop(), WithTimeout(20*time.Millisecond))

	start := time.Now()
	got := c.Compose(context.Background(), profile.Sample(), pricing.BudgetResult{})

	assert.Equal(t, Fallback, got)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "")
	assert.Error(t, err)
}

func TestTransient(t *testing.T) {
	assert.True(t, transient(genai.APIError{Code: 429}))
	assert.True(t, transient(genai.APIError{Code: 503}))
	assert.False(t, transient(genai.APIError{Code: 403}))
	assert.True(t, transient(temporaryErr{}))
	assert.False(t, transient(errors.New("boom")))
	assert.False(t, transient(context.DeadlineExceeded))
}
