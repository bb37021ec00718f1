package bot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ecom-auditor/internal/advisor"
	"ecom-auditor/internal/config"
	"ecom-auditor/internal/profit"
	"ecom-auditor/internal/storage"
	"ecom-auditor/pkg/gemini"
	"ecom-auditor/pkg/redis"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	testChat  int64 = 100
	testUser  int64 = 7
	testAdmin int64 = 42
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests int
	updates  chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeAPI) last() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type memoryStore struct {
	mu     sync.Mutex
	states map[int64][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: map[int64][]byte{}}
}

func (m *memoryStore) SaveState(_ context.Context, chatID int64, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = data
	return nil
}

func (m *memoryStore) GetState(_ context.Context, chatID int64, state any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.states[chatID]
	if !ok {
		return redis.ErrNotFound
	}
	return json.Unmarshal(data, state)
}

func (m *memoryStore) ClearState(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
	return nil
}

type fakeAdmin struct {
	set       map[string]float64
	resets    []profit.Platform
	overrides []storage.Override
}

func (a *fakeAdmin) SetFee(_ context.Context, p profit.Platform, key string, value float64, _ int64) error {
	if err := storage.CheckFeeKey(p, key); err != nil {
		return err
	}
	if a.set == nil {
		a.set = map[string]float64{}
	}
	a.set[string(p)+"."+key] = value
	return nil
}

func (a *fakeAdmin) ResetFees(_ context.Context, p profit.Platform) error {
	a.resets = append(a.resets, p)
	return nil
}

func (a *fakeAdmin) Overrides(context.Context, profit.Platform) ([]storage.Override, error) {
	return a.overrides, nil
}

type fixedLimiter bool

func (l fixedLimiter) Allow(context.Context, string, int64, time.Duration) (bool, error) {
	return bool(l), nil
}

type generatorFunc func(ctx context.Context, prompt string, cfg gemini.GenerationConfig) (string, error)

func (fn generatorFunc) GenerateText(ctx context.Context, prompt string, cfg gemini.GenerationConfig) (string, error) {
	return fn(ctx, prompt, cfg)
}

type fixture struct {
	bot   *Bot
	api   *fakeAPI
	store *memoryStore
	admin *fakeAdmin
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	api := &fakeAPI{}
	store := newMemoryStore()
	admin := &fakeAdmin{}
	deps := Deps{
		State: store,
		Admin: admin,
		Config: &config.Config{
			Telegram: config.TelegramConfig{AdminIDs: []int64{testAdmin}},
			Gemini:   config.GeminiConfig{RateLimit: 5},
			Calc:     config.CalcConfig{WarningMarginPercent: 20},
		},
		Logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &fixture{bot: newBot(api, deps), api: api, store: store, admin: admin}
}

func (f *fixture) text(from int64, text string) {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: testChat},
		From: &tgbotapi.User{ID: from},
	}
	if strings.HasPrefix(text, "/") {
		length := strings.IndexByte(text, ' ')
		if length < 0 {
			length = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	f.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func (f *fixture) callback(data string) {
	f.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: testUser},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChat}},
		Data:    data,
	}})
}

func (f *fixture) session(t *testing.T) Session {
	t.Helper()
	s, err := f.bot.state.Get(context.Background(), testChat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("expected %q to contain %q", got, want)
	}
}

func TestStart(t *testing.T) {
	f := newFixture(t)
	f.text(testUser, "/start")

	texts := f.api.texts()
	if len(texts) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(texts))
	}
	assertContains(t, texts[0], "Xin chào")
	assertContains(t, texts[0], "Shopee")
	if strings.Contains(texts[1], "/setfee") {
		t.Error("expected no admin help for a regular user")
	}

	s := f.session(t)
	if s.Platform != profit.PlatformShopee {
		t.Errorf("expected shopee, got %s", s.Platform)
	}
	if s.Fees != profit.DefaultFees(profit.PlatformShopee) {
		t.Errorf("expected default shopee fees, got %+v", s.Fees)
	}
}

func TestHelpForAdmin(t *testing.T) {
	f := newFixture(t)
	f.text(testAdmin, "/help")
	assertContains(t, f.api.last(), "/setfee")
}

func TestEditFieldFlow(t *testing.T) {
	f := newFixture(t)

	f.callback(callbackEdit + "sellingPrice")
	if f.api.requests != 1 {
		t.Errorf("expected callback to be answered, got %d requests", f.api.requests)
	}
	assertContains(t, f.api.last(), "Giá bán/SP")

	s := f.session(t)
	if s.Step != StepAwaitValue || s.PendingField != "sellingPrice" {
		t.Fatalf("expected to await sellingPrice, got step %q field %q", s.Step, s.PendingField)
	}

	f.text(testUser, "600k")

	s = f.session(t)
	if s.Step != StepIdle {
		t.Errorf("expected idle step, got %q", s.Step)
	}
	if s.Product.SellingPrice != 600000 {
		t.Errorf("expected selling price 600000, got %v", s.Product.SellingPrice)
	}
	assertContains(t, f.api.last(), "Kết quả Shopee")
}

func TestEditFieldRejectsInput(t *testing.T) {
	tests := []struct {
		name  string
		field string
		input string
		want  string
	}{
		{"not a number", "capitalCost", "abc", "số hợp lệ"},
		{"negative percent", "staffPercent", "-5", "không được là số âm"},
		{"zero quantity", "quantity", "0", "Số lượng phải là số nguyên"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.callback(callbackEdit + tt.field)
			f.text(testUser, tt.input)

			assertContains(t, f.api.last(), tt.want)
			s := f.session(t)
			if s.Step != StepAwaitValue {
				t.Errorf("expected to keep awaiting input, got step %q", s.Step)
			}
			if s.Product != profit.DefaultProduct() {
				t.Errorf("expected product unchanged, got %+v", s.Product)
			}
		})
	}
}

func TestEditName(t *testing.T) {
	f := newFixture(t)
	f.callback(callbackEdit + fieldName)
	if s := f.session(t); s.Step != StepAwaitName {
		t.Fatalf("expected name step, got %q", s.Step)
	}

	f.text(testUser, "  Áo thun <basic>  ")
	s := f.session(t)
	if s.Product.Name != "Áo thun <basic>" {
		t.Errorf("expected trimmed name, got %q", s.Product.Name)
	}
	assertContains(t, f.api.last(), "Áo thun &lt;basic&gt;")
}

func TestCommandAbandonsPendingInput(t *testing.T) {
	f := newFixture(t)
	f.callback(callbackEdit + "capitalCost")
	f.text(testUser, "/result")

	if s := f.session(t); s.Step != StepIdle {
		t.Errorf("expected idle step, got %q", s.Step)
	}
	assertContains(t, f.api.last(), "Kết quả")
}

func TestPlatformSwitchReplacesFees(t *testing.T) {
	f := newFixture(t)
	f.callback(callbackEdit + "fixedFeePercent")
	f.text(testUser, "7")
	if s := f.session(t); s.Fees.FixedFeePercent != 7 {
		t.Fatalf("expected fixed fee 7, got %v", s.Fees.FixedFeePercent)
	}

	f.callback(callbackPlatform + "tiktok")
	s := f.session(t)
	if s.Platform != profit.PlatformTikTok {
		t.Errorf("expected tiktok, got %s", s.Platform)
	}
	if s.Fees != profit.DefaultFees(profit.PlatformTikTok) {
		t.Errorf("expected default tiktok fees, got %+v", s.Fees)
	}
	assertContains(t, f.api.last(), "TikTok")
}

func TestPlatformCommandRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	f.text(testUser, "/platform lazada")
	assertContains(t, f.api.last(), "Sàn không hợp lệ")
}

func TestCompareToggle(t *testing.T) {
	f := newFixture(t)
	f.callback(callbackCompare + "on")

	if s := f.session(t); !s.Comparison {
		t.Fatal("expected comparison on")
	}
	last := f.api.last()
	assertContains(t, last, "So sánh Shopee vs TikTok Shop")
	assertContains(t, last, "lãi hơn")

	f.callback(callbackCompare + "off")
	if s := f.session(t); s.Comparison {
		t.Error("expected comparison off")
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	f.text(testUser, "/cancel")
	assertContains(t, f.api.last(), "Không có thao tác")

	f.callback(callbackEdit + "capitalCost")
	f.callback(callbackCancel)
	assertContains(t, f.api.last(), "Đã huỷ")
	if s := f.session(t); s.Step != StepIdle {
		t.Errorf("expected idle step, got %q", s.Step)
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	f.callback(callbackEdit + "capitalCost")
	f.text(testUser, "1000")
	f.text(testUser, "/reset")

	s := f.session(t)
	if s.Product != profit.DefaultProduct() {
		t.Errorf("expected default product, got %+v", s.Product)
	}
}

func TestMenuButtons(t *testing.T) {
	f := newFixture(t)
	f.text(testUser, buttonChart)
	assertContains(t, f.api.last(), "Cấu trúc dòng tiền")

	f.text(testUser, "xin chào")
	assertContains(t, f.api.last(), "/help")
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	f.text(testUser, "/report")

	f.api.mu.Lock()
	defer f.api.mu.Unlock()
	if len(f.api.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(f.api.sent))
	}
	doc, ok := f.api.sent[0].(tgbotapi.DocumentConfig)
	if !ok {
		t.Fatalf("expected a document, got %T", f.api.sent[0])
	}
	file, ok := doc.File.(tgbotapi.FileBytes)
	if !ok {
		t.Fatalf("expected file bytes, got %T", doc.File)
	}
	if !strings.HasPrefix(file.Name, "profit_shopee_") || len(file.Bytes) == 0 {
		t.Errorf("unexpected report file %q (%d bytes)", file.Name, len(file.Bytes))
	}
}

func TestAdminCommands(t *testing.T) {
	f := newFixture(t)

	f.text(testUser, "/setfee shopee fixedFeePercent 6")
	assertContains(t, f.api.last(), "không có quyền")
	if len(f.admin.set) != 0 {
		t.Fatal("expected no fee change from a regular user")
	}

	f.text(testAdmin, "/setfee shopee fixedFeePercent 6,5")
	if got := f.admin.set["shopee.fixedFeePercent"]; got != 6.5 {
		t.Errorf("expected override 6.5, got %v", got)
	}
	assertContains(t, f.api.last(), "✅ Shopee")

	f.text(testAdmin, "/setfee tiktok pishipServiceFee 1000")
	assertContains(t, f.api.last(), "không áp dụng")

	f.text(testAdmin, "/setfee shopee")
	assertContains(t, f.api.last(), "Cú pháp")

	f.text(testAdmin, "/resetfees tiktok")
	if len(f.admin.resets) != 1 || f.admin.resets[0] != profit.PlatformTikTok {
		t.Errorf("expected tiktok reset, got %v", f.admin.resets)
	}

	f.text(testAdmin, "/overrides shopee")
	assertContains(t, f.api.last(), "mặc định")

	f.admin.overrides = []storage.Override{{Key: "fixedFeePercent", Value: 6.5}}
	f.text(testAdmin, "/overrides shopee")
	assertContains(t, f.api.last(), "fixedFeePercent = 6.5")
}

func TestAdminCommandsWithoutDatabase(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Admin = nil })
	f.text(testAdmin, "/resetfees shopee")
	assertContains(t, f.api.last(), "cơ sở dữ liệu")
}

func TestAdvice(t *testing.T) {
	var prompt string
	gen := generatorFunc(func(_ context.Context, p string, _ gemini.GenerationConfig) (string, error) {
		prompt = p
		return "  Tăng giá bán thêm 10%.  ", nil
	})
	f := newFixture(t, func(d *Deps) { d.Advisor = advisor.New(gen, zap.NewNop()) })

	f.text(testUser, "/advice")
	f.bot.wg.Wait()

	texts := f.api.texts()
	if len(texts) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(texts))
	}
	assertContains(t, texts[0], "Đang phân tích")
	assertContains(t, texts[1], "Tăng giá bán thêm 10%.")
	assertContains(t, prompt, "SHOPEE")
}

func TestAdviceProviderFailure(t *testing.T) {
	gen := generatorFunc(func(context.Context, string, gemini.GenerationConfig) (string, error) {
		return "", errors.New("boom")
	})
	f := newFixture(t, func(d *Deps) { d.Advisor = advisor.New(gen, zap.NewNop()) })

	f.text(testUser, "/advice")
	f.bot.wg.Wait()
	assertContains(t, f.api.last(), advisor.FallbackError)
}

func TestAdviceSupersededReplyIsDropped(t *testing.T) {
	release := make(chan struct{})
	gen := generatorFunc(func(ctx context.Context, _ string, _ gemini.GenerationConfig) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-release:
			return "lời khuyên", nil
		}
	})
	f := newFixture(t, func(d *Deps) { d.Advisor = advisor.New(gen, zap.NewNop()) })

	f.text(testUser, "/advice")
	f.text(testUser, "/advice")
	close(release)
	f.bot.wg.Wait()

	var replies int
	for _, text := range f.api.texts() {
		if strings.Contains(text, "lời khuyên") {
			replies++
		}
	}
	if replies != 1 {
		t.Errorf("expected exactly 1 advice reply, got %d", replies)
	}
}

func TestAdviceRateLimited(t *testing.T) {
	gen := generatorFunc(func(context.Context, string, gemini.GenerationConfig) (string, error) {
		t.Error("expected no provider call")
		return "", nil
	})
	f := newFixture(t, func(d *Deps) {
		d.Advisor = advisor.New(gen, zap.NewNop())
		d.Limiter = fixedLimiter(false)
	})

	f.text(testUser, "/advice")
	f.bot.wg.Wait()
	assertContains(t, f.api.last(), "hết lượt")
}

func TestAdviceNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.text(testUser, "/advice")
	assertContains(t, f.api.last(), "chưa được cấu hình")
}

func TestStartStopsWhenUpdatesClose(t *testing.T) {
	f := newFixture(t)
	f.api.updates = make(chan tgbotapi.Update, 1)
	f.api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/help",
		Chat:     &tgbotapi.Chat{ID: testChat},
		From:     &tgbotapi.User{ID: testUser},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len("/help")}},
	}}
	close(f.api.updates)

	if err := f.bot.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContains(t, f.api.last(), "Máy tính lợi nhuận")
}

func TestStateStorageRepairsPlatform(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()
	if err := store.SaveState(ctx, testChat, Session{Platform: "lazada"}); err != nil {
		t.Fatal(err)
	}

	s := NewStateStorage(store, func(context.Context) profit.FeeStructure { return profit.FeeStructure{} })
	session, err := s.Get(ctx, testChat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Platform != profit.PlatformShopee {
		t.Errorf("expected shopee, got %s", session.Platform)
	}
}
