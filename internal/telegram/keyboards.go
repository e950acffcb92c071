package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// MainKeyboard returns the main menu keyboard
func MainKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "💰 Saldo", CallbackData: "saldo"},
				{Text: "🏪 Loja", CallbackData: "loja"},
			},
		},
	}
}

// RewardsKeyboard returns one button per reward in the shop
func RewardsKeyboard() *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	for _, r := range rewards {
		rows = append(rows, []models.InlineKeyboardButton{
			{
				Text:         fmt.Sprintf("%s %s — %d créditos", r.Emoji, r.Label, r.Cost),
				CallbackData: "redeem:" + r.Key,
			},
		})
	}

	rows = append(rows, []models.InlineKeyboardButton{
		{Text: "⬅️ Voltar", CallbackData: "back"},
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// BackKeyboard returns a simple back button
func BackKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "⬅️ Voltar", CallbackData: "back"},
			},
		},
	}
}
