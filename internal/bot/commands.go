package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/billing"
	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

const adminHelp = `Доступні команди:
/month [YYYY-MM] - Рахунки за місяць (поточний за замовчуванням)
/students - Список учнів
/mark <student_id> <YYYY-MM-DD> - Відмітити або зняти відвідування
/help - Показати це повідомлення

Приклади:
/month 2024-02
/mark 3 2024-02-10`

type commandHandler func(args []string) (string, error)

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":    b.handleHelp,
		"help":     b.handleHelp,
		"month":    b.handleMonth,
		"students": b.handleStudents,
		"mark":     b.handleMark,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || !b.admins[msg.From.ID] {
		b.sendMessage(msg.Chat.ID, "Цей бот доступний лише вчителю.")
		return
	}
	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, "Надішліть /help для списку команд.")
		return
	}

	b.sendMessage(msg.Chat.ID, b.reply(msg.Command(), strings.Fields(msg.CommandArguments())))
}

// reply runs one admin command and renders its outcome as chat text.
func (b *Bot) reply(cmd string, args []string) string {
	handler, ok := b.routeAdminCommands(cmd)
	if !ok {
		return fmt.Sprintf("Невідома команда /%s, надішліть /help", cmd)
	}

	text, err := handler(args)
	if err != nil {
		logger.Error.Printf("Command /%s error: %v", cmd, err)
		return fmt.Sprintf("Помилка: %v", err)
	}
	return text
}

func (b *Bot) handleHelp(args []string) (string, error) {
	return adminHelp, nil
}

func (b *Bot) handleMonth(args []string) (string, error) {
	var m billing.Month
	if len(args) > 0 {
		parsed, err := billing.ParseMonth(args[0])
		if err != nil {
			return "", fmt.Errorf("некоректний місяць (YYYY-MM): %v", err)
		}
		m = parsed
	} else {
		m = billing.MonthOf(models.DateOf(b.service.Now()))
	}

	students, err := b.service.Store.ListStudents()
	if err != nil {
		return "", fmt.Errorf("помилка отримання учнів: %v", err)
	}
	attendance, err := b.service.Store.ListAttendance(m.Start, m.End)
	if err != nil {
		return "", fmt.Errorf("помилка отримання відвідувань: %v", err)
	}

	bills, total := b.service.Ledger.Statement(students, attendance, m)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("Рахунки за %s:\n\n", m))
	for _, bill := range bills {
		if bill.Lessons == 0 {
			continue
		}
		msg.WriteString(fmt.Sprintf("👉🏻 %s: %d занять, %d\n", bill.Name, bill.Lessons, bill.MonthSum))
	}
	msg.WriteString(fmt.Sprintf("\nРазом: %d", total))
	return msg.String(), nil
}

func (b *Bot) handleStudents(args []string) (string, error) {
	students, err := b.service.Store.ListStudents()
	if err != nil {
		return "", fmt.Errorf("помилка отримання учнів: %v", err)
	}
	if len(students) == 0 {
		return "Учнів не знайдено", nil
	}

	var msg strings.Builder
	msg.WriteString("Учні:\n\n")
	for _, st := range students {
		msg.WriteString(fmt.Sprintf("%d. %s\n", st.ID, st.Name))
	}
	return msg.String(), nil
}

func (b *Bot) handleMark(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("використання: /mark <student_id> <YYYY-MM-DD>")
	}

	studentID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "", fmt.Errorf("некоректний id учня: %s", args[0])
	}

	res, err := b.service.ToggleAttendance(b.actor, models.ToggleRequest{
		StudentID: models.ID(studentID),
		Date:      args[1],
	})
	if err != nil {
		return "", err
	}

	state := "❌ знято"
	if res.Present {
		state = "✅ відмічено"
	}
	return fmt.Sprintf("%s: учень %d, %s\nЗа місяць: %d\nРазом: %d",
		state, studentID, args[1], res.MonthSum, res.Total), nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Error.Printf("Failed to send message to %d: %v", chatID, err)
	}
}
