package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramService — уведомления оператору. Все методы безопасны при
// nil-ресивере: без токена/чата интеграция просто молчит.
type TelegramService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramService(botToken string, chatID int64) *TelegramService {
	if botToken == "" || chatID == 0 {
		log.Printf("[tg][init] token or chat_id empty, notifications disabled")
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[tg][init][err] %v (notifications disabled)", err)
		return nil
	}
	return &TelegramService{bot: bot, chatID: chatID}
}

// NotifyConflict — попытка активировать уже привязанный код с другой
// машины. Сбой отправки только логируем: ответ клиенту от этого не зависит.
func (t *TelegramService) NotifyConflict(code, boundTo, attempted string) {
	if t == nil || t.bot == nil {
		return
	}
	text := fmt.Sprintf(
		"⚠️ Конфликт активации\nКод: %s\nПривязан к: %s\nПопытка с: %s",
		code, boundTo, attempted,
	)
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][notify][err] %v", err)
	}
}
