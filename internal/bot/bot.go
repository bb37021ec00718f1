package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ecom-auditor/internal/advisor"
	"ecom-auditor/internal/config"
	"ecom-auditor/internal/feebook"
	"ecom-auditor/internal/profit"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramAPI is the part of tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// FeeAdmin edits the shared fee overrides. It is nil without a database.
type FeeAdmin interface {
	SetFee(ctx context.Context, p profit.Platform, key string, value float64, updatedBy int64) error
	ResetFees(ctx context.Context, p profit.Platform) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
}

type Deps struct {
	State   StateStore
	Book    feebook.Book
	Admin   FeeAdmin
	Limiter RateLimiter
	Advisor *advisor.Advisor
	Config  *config.Config
	Logger  *zap.Logger
}

type Bot struct {
	api      telegramAPI
	logger   *zap.Logger
	state    *StateStorage
	book     feebook.Book
	admin    FeeAdmin
	limiter  RateLimiter
	advisor  *advisor.Advisor
	tracker  *advisor.Tracker
	calc     profit.Calculator
	cfg      *config.Config
	mu       sync.Mutex
	wg       sync.WaitGroup
	handlers map[string]func(context.Context, int64, Session, string)
}

func New(token string, deps Deps) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	deps.Logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	return newBot(botAPI, deps), nil
}

func newBot(api telegramAPI, deps Deps) *Bot {
	if deps.Book == nil {
		deps.Book = feebook.Static{}
	}
	b := &Bot{
		api:     api,
		logger:  deps.Logger,
		book:    deps.Book,
		admin:   deps.Admin,
		limiter: deps.Limiter,
		advisor: deps.Advisor,
		tracker: advisor.NewTracker(),
		calc:    profit.NewCalculator(profit.Options{WarningMarginPercent: deps.Config.Calc.WarningMarginPercent}),
		cfg:     deps.Config,
	}
	b.state = NewStateStorage(deps.State, func(ctx context.Context) profit.FeeStructure {
		return b.schedule(ctx, profit.PlatformShopee)
	})
	b.registerHandlers()
	return b
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, Session, string){
		StepAwaitValue: b.handleValueInput,
		StepAwaitName:  b.handleNameInput,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer func() {
		b.api.StopReceivingUpdates()
		b.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case update.Message != nil:
		b.processMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.processCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	session, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Lỗi khi xử lý yêu cầu")
		return
	}

	if b.handleMenuButton(ctx, chatID, session, msg.Text) {
		return
	}

	if handler, exists := b.handlers[session.Step]; exists {
		handler(ctx, chatID, session, msg.Text)
		return
	}
	b.handleDefault(chatID)
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", callback.Data))

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}

	session, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Lỗi khi xử lý yêu cầu")
		return
	}
	b.handleCallbackData(ctx, chatID, session, callback.Data)
}

// schedule resolves a platform's fees from the book, falling back to the
// defaults.
func (b *Bot) schedule(ctx context.Context, p profit.Platform) profit.FeeStructure {
	return feebook.Resolver(ctx, b.book, b.logger)(p)
}

func (b *Bot) saveSession(ctx context.Context, chatID int64, session Session) bool {
	if err := b.state.Save(ctx, chatID, session); err != nil {
		b.logger.Error("Failed to save state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Không lưu được dữ liệu, vui lòng thử lại")
		return false
	}
	return true
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendHTML(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	b.sendMessage(msg)
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, "❌ "+text))
}
