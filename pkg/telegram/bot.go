package telegram

import (
	"context"
	"fmt"
	"strings"

	"swapcash/internal/apperrors"
	"swapcash/internal/config"
	"swapcash/internal/models"
	"swapcash/internal/services"
	"swapcash/internal/utils"
	"swapcash/pkg/logger"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bot is the Telegram entry point: user onboarding via /start deep links and
// the operator approval flow via inline keyboards in the admin chat.
type Bot struct {
	instance     *telego.Bot
	cfg          *config.TelegramConfig
	referrals    services.ReferralService
	transactions services.TransactionService
	withdrawals  services.WithdrawalService
	rates        services.RateService
	logger       *logger.Logger

	handler *th.BotHandler
}

// NewClient creates the raw API client. It is separate from NewBot so the
// notifier can be built before the services the bot depends on.
func NewClient(token string) (*telego.Bot, error) {
	instance, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return instance, nil
}

func NewBot(
	instance *telego.Bot,
	cfg *config.TelegramConfig,
	referrals services.ReferralService,
	transactions services.TransactionService,
	withdrawals services.WithdrawalService,
	rates services.RateService,
	log *logger.Logger,
) *Bot {
	return &Bot{
		instance:     instance,
		cfg:          cfg,
		referrals:    referrals,
		transactions: transactions,
		withdrawals:  withdrawals,
		rates:        rates,
		logger:       log,
	}
}

// Start begins long polling and blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create bot handler: %w", err)
	}
	b.handler = handler

	handler.Handle(b.handleStart, th.CommandEqual("start"))
	handler.Handle(b.handleRates, th.CommandEqual("rates"))
	handler.Handle(b.handleBalance, th.CommandEqual("balance"))
	handler.Handle(b.handlePending, th.CommandEqual("pending"))
	handler.Handle(b.handleResolveCallback, th.AnyCallbackQueryWithMessage())

	return handler.Start()
}

// Stop shuts down the update handler.
func (b *Bot) Stop() {
	if b.handler != nil {
		_ = b.handler.Stop()
	}
}

func (b *Bot) handleStart(ctx *th.Context, update telego.Update) error {
	message := update.Message

	// The deep-link argument is the inviter's referral code.
	referralCode := ""
	if parts := strings.Split(message.Text, " "); len(parts) > 1 {
		referralCode = parts[1]
	}

	user, err := b.referrals.RegisterUser(ctx.Context(), &services.RegisterUserRequest{
		TelegramID:   message.From.ID,
		Username:     message.From.Username,
		FirstName:    message.From.FirstName,
		ReferralCode: referralCode,
	})
	if err != nil {
		b.logger.WithError(err).WithTelegramID(message.From.ID).Error("Failed to register user")
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID), "Something went wrong, please try again later."))
		return nil
	}

	text := fmt.Sprintf(
		"Welcome, %s!\n\nBuy and sell crypto for mobile money at the best rates.\n\nYour invite link:\n%s",
		message.From.FirstName, b.referrals.InviteLink(user.ReferralCode))

	msg := tu.Message(tu.ID(message.Chat.ID), text)
	if b.cfg.WebAppURL != "" {
		msg = msg.WithReplyMarkup(tu.InlineKeyboard(
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("Open SwapCash").WithWebApp(&telego.WebAppInfo{URL: b.cfg.WebAppURL}),
			),
		))
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), msg)
	return nil
}

func (b *Bot) handleRates(ctx *th.Context, update telego.Update) error {
	rates, err := b.rates.ListRates(ctx.Context())
	if err != nil || len(rates) == 0 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID), "Rates are unavailable right now."))
		return nil
	}

	var sb strings.Builder
	sb.WriteString("Current rates (" + utils.DefaultFiatCurrency + "):\n\n")
	for _, rate := range rates {
		sb.WriteString(fmt.Sprintf("%s\n  Buy: %.2f\n  Sell: %.2f\n", rate.Currency, rate.BuyRate, rate.SellRate))
	}

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(update.Message.Chat.ID), sb.String()))
	return nil
}

func (b *Bot) handleBalance(ctx *th.Context, update telego.Update) error {
	stats, err := b.referrals.GetStats(ctx.Context(), update.Message.From.ID)
	if err != nil {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID), "No account found. Send /start first."))
		return nil
	}

	text := fmt.Sprintf(
		"Referral balance: %.2f %s\nFriends invited: %d\n\nInvite link:\n%s",
		stats.ReferralEarnings, utils.DefaultFiatCurrency, stats.ReferralCount, stats.InviteLink)

	_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(update.Message.Chat.ID), text))
	return nil
}

// handlePending lists open orders and payouts with approval buttons. Admin
// chat only.
func (b *Bot) handlePending(ctx *th.Context, update telego.Update) error {
	if update.Message.Chat.ID != b.cfg.AdminChatID {
		return nil
	}

	params := utils.GetDefaultPaginationParams()

	transactions, _, err := b.transactions.ListByStatus(ctx.Context(), models.TransactionStatusPending, params)
	if err != nil {
		b.logger.WithError(err).Error("Failed to list pending transactions")
	}
	for _, tx := range transactions {
		text := fmt.Sprintf("Order %s\nUser %d: %s %.4f %s -> %.2f %s",
			tx.ID.Hex(), tx.TelegramID, tx.Type, tx.AmountToSend, tx.CurrencyFrom, tx.AmountToReceive, tx.CurrencyTo)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(b.cfg.AdminChatID), text).
			WithReplyMarkup(approvalKeyboard("tx", tx.ID.Hex())))
	}

	withdrawals, _, err := b.withdrawals.ListByStatus(ctx.Context(), models.WithdrawalStatusPending, params)
	if err != nil {
		b.logger.WithError(err).Error("Failed to list pending withdrawals")
	}
	for _, wd := range withdrawals {
		text := fmt.Sprintf("Withdrawal %s\nUser %d: %.2f %s to %s",
			wd.ID.Hex(), wd.TelegramID, wd.Amount, utils.DefaultFiatCurrency, wd.MomoNumber)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(b.cfg.AdminChatID), text).
			WithReplyMarkup(approvalKeyboard("wd", wd.ID.Hex())))
	}

	if len(transactions) == 0 && len(withdrawals) == 0 {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(b.cfg.AdminChatID), "Nothing pending."))
	}

	return nil
}

func approvalKeyboard(kind, id string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("Approve").WithCallbackData(kind+"_ok:"+id),
			tu.InlineKeyboardButton("Reject").WithCallbackData(kind+"_no:"+id),
		),
	)
}

// handleResolveCallback applies the admin decision behind the approval
// buttons. Duplicate clicks are no-ops.
func (b *Bot) handleResolveCallback(ctx *th.Context, update telego.Update) error {
	callback := update.CallbackQuery

	kind, hex, ok := strings.Cut(callback.Data, ":")
	if !ok {
		return nil
	}
	if callback.Message.GetChat().ID != b.cfg.AdminChatID {
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID).WithText("Not allowed"))
		return nil
	}

	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil
	}

	admin := fmt.Sprintf("tg:%d", callback.From.ID)
	approve := strings.HasSuffix(kind, "_ok")

	var resolveErr error
	switch strings.TrimSuffix(strings.TrimSuffix(kind, "_ok"), "_no") {
	case "tx":
		_, resolveErr = b.transactions.Resolve(ctx.Context(), id, approve, admin)
	case "wd":
		outcome := services.WithdrawalOutcomeReject
		if approve {
			outcome = services.WithdrawalOutcomeApprove
		}
		_, resolveErr = b.withdrawals.Resolve(ctx.Context(), id, outcome, admin)
	default:
		return nil
	}

	answer := tu.CallbackQuery(callback.ID)
	switch {
	case resolveErr == nil:
		if approve {
			answer = answer.WithText("Approved")
		} else {
			answer = answer.WithText("Rejected")
		}
	case apperrors.IsNoOp(resolveErr):
		answer = answer.WithText("Already resolved")
	default:
		b.logger.WithError(resolveErr).WithField("callback", callback.Data).Error("Failed to resolve from callback")
		answer = answer.WithText("Failed, check the logs")
	}

	_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), answer)
	return nil
}
