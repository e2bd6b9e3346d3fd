package telegram

import (
	"fmt"
	"strings"

	app "subsea-inspector/internal/application"
	"subsea-inspector/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для осмотра подводной инфраструктуры.

📸 Отправьте мне подводный снимок трубопровода или кабеля, и я найду дефекты и оценю состояние.
📍 Пришлите геопозицию, и я покажу ближайшие месторождения.

📋 Команды:
/check — проверить снимок
/nearby — месторождения рядом
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check и затем фото
2️⃣ Бот найдёт дефекты и оценит общее состояние
3️⃣ Вы получите оценку, рекомендации и фото с подсветкой дефектов

💡 Рекомендации:
• Снимайте с подсветкой ROV, без взвеси
• Держите камеру перпендикулярно поверхности
• Фото должно быть чётким

📋 Команды:
/check — проверить снимок
/nearby — месторождения рядом с точкой
/cancel — отменить операцию`

	msgAwaitingPhoto    = "📸 Отправьте подводный снимок для проверки на дефекты."
	msgAwaitingLocation = "📍 Отправьте геопозицию, чтобы найти ближайшие месторождения."
	msgCancelled        = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto        = "📸 Пожалуйста, отправьте фото для проверки на дефекты."
	msgSendLocation     = "📍 Пожалуйста, отправьте геопозицию кнопкой ниже или через вложения."
	msgUnknownCommand   = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing       = "⏳ Обрабатываю изображение..."
	msgBusy             = "⏳ Предыдущий снимок ещё анализируется, дождитесь результата."
	msgNoDefects        = "✅ Дефекты не обнаружены."
	msgProcessingError  = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgSearchError      = "⚠️ Не удалось выполнить поиск. Попробуйте позже."

	btnShareLocation = "📍 Отправить геопозицию"
)

// captionLimit максимальная длина подписи к фото в Telegram.
const captionLimit = 1024

var conditionLabels = map[entity.Condition]string{
	entity.ConditionExcellent: "🟢 отличное",
	entity.ConditionGood:      "🟢 хорошее",
	entity.ConditionFair:      "🟡 удовлетворительное",
	entity.ConditionPoor:      "🟠 плохое",
	entity.ConditionCritical:  "🔴 критическое",
}

var defectLabels = map[entity.DefectType]string{
	entity.DefectCorrosion:     "коррозия",
	entity.DefectCrack:         "трещина",
	entity.DefectWeld:          "дефект сварного шва",
	entity.DefectCoatingDamage: "повреждение покрытия",
	entity.DefectBiofouling:    "биообрастание",
	entity.DefectOther:         "прочее",
}

var severityLabels = map[entity.Severity]string{
	entity.SeverityLow:      "низкая",
	entity.SeverityMedium:   "средняя",
	entity.SeverityHigh:     "высокая",
	entity.SeverityCritical: "критическая",
}

// FormatAnalysis готовит текст ответа по результату анализа.
func FormatAnalysis(a *entity.Analysis) string {
	var sb strings.Builder
	r := a.Result

	fmt.Fprintf(&sb, "Состояние: %s\n", label(conditionLabels, r.OverallCondition))
	fmt.Fprintf(&sb, "Уверенность: %.0f%%\n", r.Confidence*100)

	if !r.HasDefects() {
		sb.WriteString("\n")
		sb.WriteString(msgNoDefects)
	} else {
		fmt.Fprintf(&sb, "\n🔍 Найдено дефектов: %d\n", len(r.Defects))
		for i, d := range r.Defects {
			fmt.Fprintf(&sb, "%d. %s, серьёзность %s (%.0f%%)\n",
				i+1, label(defectLabels, d.Type), label(severityLabels, d.Severity), d.Confidence*100)
		}
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("\n🛠 Рекомендации:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&sb, "• %s\n", rec)
		}
	}

	fmt.Fprintf(&sb, "\nID анализа: %s", a.ID)
	return sb.String()
}

// FormatNearby готовит список месторождений в радиусе.
func FormatNearby(matches []app.FieldMatch, radiusKm float64) string {
	if len(matches) == 0 {
		return fmt.Sprintf("🔎 В радиусе %.0f км месторождений не найдено.", radiusKm)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🛢 Месторождения в радиусе %.0f км: %d\n", radiusKm, len(matches))
	for i, m := range matches {
		fmt.Fprintf(&sb, "\n%d. %s — %.1f км\n", i+1, m.Field.Name, m.DistanceKm)
		fmt.Fprintf(&sb, "   Оператор: %s, статус: %s\n", m.Field.Operator, m.Field.Status)
		if m.Field.HubFieldID != "" {
			fmt.Fprintf(&sb, "   Хаб: %s\n", m.Field.HubFieldID)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func label[K ~string](labels map[K]string, key K) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return string(key)
}

func truncateCaption(text string) string {
	runes := []rune(text)
	if len(runes) <= captionLimit {
		return text
	}
	return string(runes[:captionLimit-1]) + "…"
}
