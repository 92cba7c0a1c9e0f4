package services

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/marketdash/market-dashboard/domain"
)

type notifierCredentials interface {
	GetTelegramBotAPIToken() string
	GetTelegramChatID() int64
}

type telegramNotifierLogger interface {
	Panic(args ...interface{})
	Errorf(format string, args ...interface{})
}

// TelegramNotifier mirrors dashboard events to a configured Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger telegramNotifierLogger
}

func NewTelegramNotifier(notifierCredentials notifierCredentials, telegramNotifierLogger telegramNotifierLogger) *TelegramNotifier {
	telegramNotifier := TelegramNotifier{
		chatID: notifierCredentials.GetTelegramChatID(),
		logger: telegramNotifierLogger,
	}

	var err error
	telegramNotifier.bot, err = tgbotapi.NewBotAPI(notifierCredentials.GetTelegramBotAPIToken())
	if err != nil {
		telegramNotifier.logger.Panic(err)
	}

	return &telegramNotifier
}

func (telegramNotifier *TelegramNotifier) OrderPlaced(order domain.Order) {
	text := fmt.Sprintf("%s order placed: %d @ %s 💵", order.Type, order.Quantity, domain.MoneyLabel(order.Price))
	telegramNotifier.send(text)
}

func (telegramNotifier *TelegramNotifier) TradeDeleted(tradeID string) {
	telegramNotifier.send(fmt.Sprintf("Trade %s deleted ❌", tradeID))
}

func (telegramNotifier *TelegramNotifier) send(text string) {
	msg := tgbotapi.NewMessage(telegramNotifier.chatID, text)
	if _, err := telegramNotifier.bot.Send(msg); err != nil {
		telegramNotifier.logger.Errorf("telegram send: %v", err)
	}
}
