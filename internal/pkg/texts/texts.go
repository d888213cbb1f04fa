// Package texts статичные строки интерфейса бота (ru/en).
// Хранение переводов в БД и админка переводов сюда сознательно не входят.
package texts

import "fmt"

const fallbackLanguage = "ru"

var messages = map[string]map[string]string{
	"ru": {
		"start":             "Здравствуйте! Я помогу записаться на консультацию. Команда /book — начать запись, /help — справка.",
		"help":              "Команды:\n/book — записаться на консультацию\n/language — сменить язык\n/cancel — прервать заполнение анкеты",
		"cancelled":         "Анкета прервана. /book — начать заново.",
		"ask_format":        "Какой формат консультации вам подходит?",
		"btn_online":        "Онлайн",
		"btn_onsite":        "Очно",
		"onsite_link":       "Очные консультации проходят в клинике: %s",
		"ask_kind":          "Какой тип консультации?",
		"btn_individual":    "Индивидуальная — %s",
		"btn_couple":        "Парная — %s",
		"ask_timezone":      "Укажите ваш часовой пояс в формате UTC+X или UTC-X (например, UTC+3).",
		"bad_timezone":      "Не понял часовой пояс. Используйте формат UTC+X или UTC-X, например UTC+4.",
		"ask_time":          "Укажите желаемые дату и время в формате ГГГГ-ММ-ДД ЧЧ:ММ (по вашему времени).",
		"bad_time":          "Не понял дату. Пример: 2026-09-14 16:00.",
		"ask_problem":       "Коротко опишите, с чем хотите поработать.",
		"confirm_sent":      "Спасибо! Заявка отправлена. Я напишу, когда будет ответ.",
		"waitlist_intro":    "Сейчас запись приостановлена. Я добавлю вас в лист ожидания и напишу, как только запись откроется.",
		"waitlisted":        "Вы в листе ожидания. Заявка: %s",
		"dequeued":          "Запись открылась! Ваша заявка передана специалисту, желаемое время предложено заново.",
		"proposal_received": "Предложено время консультации: %s. Подтвердить?",
		"btn_agree":         "✅ Подтверждаю",
		"btn_counter":       "💬 Предложить другое время",
		"btn_decline":       "❌ Отказаться",
		"counter_prompt":    "Напишите удобные вам дату и время в формате ГГГГ-ММ-ДД ЧЧ:ММ.",
		"accepted":          "Время согласовано: %s. До встречи!",
		"rejected":          "Заявка отклонена. Вы можете создать новую через /book.",
		"expired":           "Заявка закрыта: долгое время не было ответа. Вы можете создать новую через /book.",
		"choose_language":   "Выберите язык / Choose language",
		"language_set":      "Язык сохранён.",
		"err_out_of_turn":   "Сейчас ход другой стороны — дождитесь ответа на ваше предложение.",
		"err_invalid_state": "Эта заявка уже закрыта, действие недоступно.",
		"err_not_found":     "Заявка не найдена.",
		"err_try_again":     "Не получилось обработать действие, попробуйте ещё раз.",
	},
	"en": {
		"start":             "Hello! I can help you book a consultation. /book — start booking, /help — help.",
		"help":              "Commands:\n/book — book a consultation\n/language — change language\n/cancel — abort the questionnaire",
		"cancelled":         "Questionnaire aborted. /book — start over.",
		"ask_format":        "Which consultation format works for you?",
		"btn_online":        "Online",
		"btn_onsite":        "On-site",
		"onsite_link":       "On-site consultations take place at the clinic: %s",
		"ask_kind":          "Which consultation type?",
		"btn_individual":    "Individual — %s",
		"btn_couple":        "Couple — %s",
		"ask_timezone":      "Enter your timezone as UTC+X or UTC-X (for example, UTC+3).",
		"bad_timezone":      "Could not parse the timezone. Use UTC+X or UTC-X, for example UTC+4.",
		"ask_time":          "Enter the desired date and time as YYYY-MM-DD HH:MM (your local time).",
		"bad_time":          "Could not parse the date. Example: 2026-09-14 16:00.",
		"ask_problem":       "Briefly describe what you would like to work on.",
		"confirm_sent":      "Thank you! Your request has been sent. I will message you once there is a reply.",
		"waitlist_intro":    "Booking is currently paused. I will add you to the waitlist and message you as soon as booking reopens.",
		"waitlisted":        "You are on the waitlist. Request: %s",
		"dequeued":          "Booking has reopened! Your request was passed to the specialist with your desired time re-proposed.",
		"proposal_received": "Proposed consultation time: %s. Confirm?",
		"btn_agree":         "✅ Confirm",
		"btn_counter":       "💬 Suggest another time",
		"btn_decline":       "❌ Decline",
		"counter_prompt":    "Send a convenient date and time as YYYY-MM-DD HH:MM.",
		"accepted":          "Time agreed: %s. See you!",
		"rejected":          "The request was declined. You can create a new one with /book.",
		"expired":           "The request was closed after a long silence. You can create a new one with /book.",
		"choose_language":   "Choose language / Выберите язык",
		"language_set":      "Language saved.",
		"err_out_of_turn":   "It is the other party's turn — please wait for a reply to your proposal.",
		"err_invalid_state": "This request is already closed, the action is not available.",
		"err_not_found":     "Request not found.",
		"err_try_again":     "Could not process the action, please try again.",
	},
}

// Get возвращает строку для языка, с фолбэком на русский
func Get(lang, key string) string {
	if m, ok := messages[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := messages[fallbackLanguage][key]; ok {
		return v
	}
	return key
}

// Getf Get с подстановкой аргументов
func Getf(lang, key string, args ...any) string {
	return fmt.Sprintf(Get(lang, key), args...)
}

// Supported список поддерживаемых языков
func Supported() []string {
	return []string{"ru", "en"}
}

// IsSupported проверяет, поддерживается ли язык
func IsSupported(lang string) bool {
	_, ok := messages[lang]
	return ok
}
