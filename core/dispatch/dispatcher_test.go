package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/m3rciful/motivebot/core/quotes"
	"github.com/m3rciful/motivebot/core/reply"
)

type call struct {
	op     string
	chatID int64
	reply  reply.Reply
}

type fakeTransport struct {
	mu      sync.Mutex
	calls   []call
	ackErr  error
	sendErr error
}

func (f *fakeTransport) Acknowledge(_ context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "ack", chatID: ev.ChatID})
	return f.ackErr
}

func (f *fakeTransport) Send(_ context.Context, chatID int64, r reply.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "send", chatID: chatID, reply: r})
	return f.sendErr
}

func (f *fakeTransport) EditLast(_ context.Context, chatID int64, r reply.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "edit", chatID: chatID, reply: r})
	return f.sendErr
}

func (f *fakeTransport) ops() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.op)
	}
	return out
}

func (f *fakeTransport) last() call {
	return f.calls[len(f.calls)-1]
}

type recordingSource struct {
	mu   sync.Mutex
	cats []quotes.Category
	src  *quotes.Source
}

func (r *recordingSource) Fetch(ctx context.Context, cat quotes.Category) quotes.Quote {
	r.mu.Lock()
	r.cats = append(r.cats, cat)
	r.mu.Unlock()
	return r.src.Fetch(ctx, cat)
}

func offlineDispatcher() (*Dispatcher, *recordingSource) {
	src := &recordingSource{src: quotes.NewSource(quotes.SourceOptions{})}
	return New(src, nil), src
}

func anotherToken(t *testing.T, r reply.Reply) reply.Token {
	t.Helper()
	if len(r.Keyboard) != 2 || len(r.Keyboard[0]) != 1 {
		t.Fatalf("unexpected quote keyboard: %+v", r.Keyboard)
	}
	return r.Keyboard[0][0].Token
}

func quoteBody(r reply.Reply) string {
	return strings.TrimSuffix(r.Text, "\n\nWould you like another one?")
}

func TestStartCommand(t *testing.T) {
	d, _ := offlineDispatcher()
	tr := &fakeTransport{}
	if err := d.Handle(context.Background(), tr, CommandEvent(7, "/start")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !reflect.DeepEqual(tr.ops(), []string{"send"}) {
		t.Fatalf("ops = %v", tr.ops())
	}
	r := tr.last().reply
	if !strings.Contains(r.Text, "Welcome") || r.HasKeyboard() || r.Edit {
		t.Fatalf("unexpected welcome reply: %+v", r)
	}
	if tr.last().chatID != 7 {
		t.Fatalf("chat id = %d", tr.last().chatID)
	}
}

func TestCategoryCommand(t *testing.T) {
	d, src := offlineDispatcher()
	tr := &fakeTransport{}
	if err := d.Handle(context.Background(), tr, CommandEvent(1, "/category@MotivationBot")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	r := tr.last().reply
	want := [][]reply.Token{{"random"}, {"study", "gym"}, {"success", "confidence"}}
	var got [][]reply.Token
	for _, row := range r.Keyboard {
		var toks []reply.Token
		for _, b := range row {
			toks = append(toks, b.Token)
		}
		got = append(got, toks)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("menu = %v, want %v", got, want)
	}
	if tr.last().op != "send" || r.Edit {
		t.Fatal("menu must be a new message")
	}
	if len(src.cats) != 0 {
		t.Fatal("menu must not fetch a quote")
	}
}

func TestCategoryButton(t *testing.T) {
	d, src := offlineDispatcher()
	tr := &fakeTransport{}
	if err := d.Handle(context.Background(), tr, ButtonEvent("cb1", 3, "study")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !reflect.DeepEqual(tr.ops(), []string{"ack", "edit"}) {
		t.Fatalf("ops = %v", tr.ops())
	}
	r := tr.last().reply
	if !r.Edit {
		t.Fatal("button reply must be an edit")
	}
	study := quotes.DefaultCatalog().Quotes(quotes.Study)
	if !slices.Contains(study, quoteBody(r)) {
		t.Fatalf("quote %q is not a study quote", quoteBody(r))
	}
	if tok := anotherToken(t, r); tok != "study" {
		t.Fatalf("continuation = %q, want study", tok)
	}
	if r.Keyboard[1][0].Token != reply.TokenExit {
		t.Fatal("second row must be exit")
	}
	if !reflect.DeepEqual(src.cats, []quotes.Category{quotes.Study}) {
		t.Fatalf("fetched categories = %v", src.cats)
	}
}

func TestExitButton(t *testing.T) {
	d, src := offlineDispatcher()
	tr := &fakeTransport{}
	if err := d.Handle(context.Background(), tr, ButtonEvent("cb2", 3, reply.TokenExit)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !reflect.DeepEqual(tr.ops(), []string{"ack", "edit"}) {
		t.Fatalf("ops = %v", tr.ops())
	}
	r := tr.last().reply
	if !r.Edit || len(r.Keyboard) != 0 || r.Text == "" {
		t.Fatalf("unexpected farewell: %+v", r)
	}
	if len(src.cats) != 0 {
		t.Fatal("exit must not fetch a quote")
	}
}

func TestFreeTextWithProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := quotes.NewSource(quotes.SourceOptions{Provider: quotes.NewHTTPProvider(srv.URL, srv.Client())})
	d := New(src, nil)
	tr := &fakeTransport{}
	if err := d.Handle(context.Background(), tr, TextEvent(9, "motivate me")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !reflect.DeepEqual(tr.ops(), []string{"send"}) {
		t.Fatalf("ops = %v", tr.ops())
	}
	r := tr.last().reply
	if r.Edit {
		t.Fatal("free text reply must be a new message")
	}
	if !slices.Contains(quotes.DefaultCatalog().Fallback(), quoteBody(r)) {
		t.Fatalf("quote %q not from fallback list", quoteBody(r))
	}
	if tok := anotherToken(t, r); tok != reply.TokenRandom {
		t.Fatalf("continuation = %q, want random", tok)
	}
}

func TestRandomButton(t *testing.T) {
	d, src := offlineDispatcher()
	tr := &fakeTransport{}
	if err := d.Handle(context.Background(), tr, ButtonEvent("cb3", 3, reply.TokenRandom)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !reflect.DeepEqual(tr.ops(), []string{"ack", "edit"}) {
		t.Fatalf("ops = %v", tr.ops())
	}
	if tok := anotherToken(t, tr.last().reply); tok != reply.TokenRandom {
		t.Fatalf("continuation = %q", tok)
	}
	if !reflect.DeepEqual(src.cats, []quotes.Category{""}) {
		t.Fatalf("random must fetch without category, got %v", src.cats)
	}
}

func TestUnknownButtonFallsBackToRandom(t *testing.T) {
	d, src := offlineDispatcher()
	tr := &fakeTransport{}
	if err := d.Handle(context.Background(), tr, ButtonEvent("cb4", 3, "motivation_v1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !reflect.DeepEqual(tr.ops(), []string{"ack", "edit"}) {
		t.Fatalf("ops = %v", tr.ops())
	}
	r := tr.last().reply
	if !slices.Contains(quotes.DefaultCatalog().Fallback(), quoteBody(r)) {
		t.Fatalf("quote %q not from fallback list", quoteBody(r))
	}
	if tok := anotherToken(t, r); tok != reply.TokenRandom {
		t.Fatalf("continuation = %q, want random", tok)
	}
	if !reflect.DeepEqual(src.cats, []quotes.Category{""}) {
		t.Fatalf("unknown token must take the random path, got %v", src.cats)
	}
}

func TestAckFailureDoesNotBlockReply(t *testing.T) {
	d, _ := offlineDispatcher()
	tr := &fakeTransport{ackErr: errors.New("query is too old")}
	if err := d.Handle(context.Background(), tr, ButtonEvent("cb5", 3, "gym")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !reflect.DeepEqual(tr.ops(), []string{"ack", "edit"}) {
		t.Fatalf("ops = %v", tr.ops())
	}
}

func TestDeliveryErrorIsReturned(t *testing.T) {
	d, _ := offlineDispatcher()
	boom := errors.New("boom")
	tr := &fakeTransport{sendErr: boom}
	err := d.Handle(context.Background(), tr, CommandEvent(1, "/start"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	d, _ := offlineDispatcher()
	tr := &fakeTransport{}
	if err := d.Handle(context.Background(), tr, CommandEvent(1, "/settings")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("unknown command must not reply, got %v", tr.ops())
	}
}

func TestHelpAliasesStart(t *testing.T) {
	d, _ := offlineDispatcher()
	tr := &fakeTransport{}
	if err := d.Handle(context.Background(), tr, CommandEvent(1, "/help")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(tr.last().reply.Text, "Welcome") {
		t.Fatalf("help reply = %q", tr.last().reply.Text)
	}
}

func TestHandleRejectsInvalidInput(t *testing.T) {
	d, _ := offlineDispatcher()
	if err := d.Handle(context.Background(), nil, TextEvent(1, "x")); err == nil {
		t.Fatal("expected error for nil transport")
	}
	if err := d.Handle(context.Background(), &fakeTransport{}, Event{}); err == nil {
		t.Fatal("expected error for zero event")
	}
}

func TestConcurrentHandle(t *testing.T) {
	d, _ := offlineDispatcher()
	tr := &fakeTransport{}
	var wg sync.WaitGroup
	tokens := []reply.Token{"study", "gym", "success", "confidence", "random", "exit", "stale"}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = d.Handle(context.Background(), tr, ButtonEvent("cb", int64(i), tokens[i%len(tokens)]))
		}(i)
	}
	wg.Wait()
	if len(tr.calls) != 100 {
		t.Fatalf("expected 100 transport calls, got %d", len(tr.calls))
	}
}

func TestCommandName(t *testing.T) {
	cases := map[string]string{
		"/start":              "start",
		"/Category@SomeBot":   "category",
		"/start payload here": "start",
		"  /help  ":           "help",
		"":                    "",
	}
	for in, want := range cases {
		if got := CommandName(in); got != want {
			t.Errorf("CommandName(%q) = %q, want %q", in, got, want)
		}
	}
}
