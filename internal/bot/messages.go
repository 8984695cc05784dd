package bot

import (
	"fmt"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/shinji-kodama/picbot/internal/model"
)

// Reply-keyboard button labels. The handlers match on these exact
// strings, so they live in one place.
const (
	btnStats    = "📊 Статистика"
	btnSendNow  = "🖼️ Отправить сейчас"
	btnInterval = "⚙️ Интервал"
	btnReset    = "🔄 Сбросить историю"
	btnHelp     = "ℹ️ Справка"
	btnBack     = "Назад"
)

// Interval keyboard labels mapped to their durations.
var intervalLabels = map[string]time.Duration{
	"15 мин": 15 * time.Minute,
	"30 мин": 30 * time.Minute,
	"45 мин": 45 * time.Minute,
	"1 час":  time.Hour,
}

// intervalFromLabel resolves an interval-keyboard button press.
func intervalFromLabel(text string) (time.Duration, bool) {
	d, ok := intervalLabels[text]
	return d, ok
}

// mainKeyboard is the persistent reply keyboard shown by /start.
func mainKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: btnStats}, {Text: btnSendNow}},
			{{Text: btnInterval}, {Text: btnReset}},
			{{Text: btnHelp}},
		},
		ResizeKeyboard: true,
	}
}

// intervalKeyboard offers the preset send intervals.
func intervalKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: "15 мин"}, {Text: "30 мин"}},
			{{Text: "45 мин"}, {Text: "1 час"}},
			{{Text: btnBack}},
		},
		ResizeKeyboard: true,
	}
}

const greetingText = "👋 Привет! Я бот для отправки картинок.\n\n" +
	"Выбери действие из кнопок ниже:"

const helpText = "ℹ️ Справка по командам:\n\n" +
	"/start - главное меню\n" +
	"/stats - показать статистику отправок\n" +
	"/send_now - отправить одну картинку сейчас\n" +
	"/set_interval - изменить интервал отправок\n" +
	"/reset_history - сбросить всю историю отправок\n" +
	"/help - эта справка\n\n" +
	"Бот автоматически отправляет картинки по расписанию.\n" +
	"Картинки не повторяются, пока вы не сбросите историю."

const exhaustedText = "⚠️ Нет новых картинок для отправки!\n" +
	"Все картинки уже были отправлены.\n\n" +
	"Используйте /reset_history для сброса истории."

const sentOKText = "✅ Картинка отправлена в канал!"

const sendFailedText = "❌ Не удалось отправить картинку.\n" +
	"Подробности в логах бота."

const resetFailedText = "❌ Не удалось сбросить историю.\n" +
	"Подробности в логах бота."

const backText = "Главное меню:"

// formatStats renders the /stats reply.
func formatStats(stats model.Stats) string {
	msg := fmt.Sprintf(
		"📊 Статистика:\n\n"+
			"Всего картинок в папке: %d\n"+
			"Отправлено картинок: %d\n"+
			"Осталось неотправленных: %d\n",
		stats.Total, stats.Sent, stats.Unsent,
	)
	if stats.Total > 0 {
		msg += fmt.Sprintf("Прогресс: %.1f%%", stats.Progress())
	}
	return msg
}

// formatResetDone renders the /reset_history confirmation.
func formatResetDone(removed int) string {
	return fmt.Sprintf(
		"🔄 История сброшена!\n"+
			"Удалено %d записей о отправленных картинках.\n"+
			"Теперь все картинки считаются новыми.",
		removed,
	)
}

// formatIntervalPrompt renders the /set_interval prompt with the
// current value.
func formatIntervalPrompt(current time.Duration) string {
	return fmt.Sprintf(
		"⚙️ Текущий интервал: %d минут\n\n"+
			"Выбери новый интервал для отправки картинок:",
		int(current.Minutes()),
	)
}

// formatIntervalChanged renders the confirmation after an interval
// button press.
func formatIntervalChanged(d time.Duration) string {
	return fmt.Sprintf(
		"✅ Интервал изменён на %d минут!\n"+
			"Новое расписание будет использоваться со следующей отправки.",
		int(d.Minutes()),
	)
}

// botCommands is the command menu registered with Telegram at startup.
func botCommands() []models.BotCommand {
	return []models.BotCommand{
		{Command: "start", Description: "Главное меню"},
		{Command: "stats", Description: "Статистика отправок"},
		{Command: "send_now", Description: "Отправить одну картинку сейчас"},
		{Command: "set_interval", Description: "Изменить интервал отправок"},
		{Command: "reset_history", Description: "Сбросить историю отправок"},
		{Command: "help", Description: "Справка по командам"},
	}
}
