// Package keyboard builds reply keyboards from plain labels.
package keyboard

import tele "gopkg.in/telebot.v4"

// Rows returns a resized reply keyboard with one row per argument. Empty
// labels and empty rows are skipped.
func Rows(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	layout := make([]tele.Row, 0, len(rows))
	for _, labels := range rows {
		var row tele.Row
		for _, label := range labels {
			if label != "" {
				row = append(row, markup.Text(label))
			}
		}
		if len(row) > 0 {
			layout = append(layout, row)
		}
	}
	markup.Reply(layout...)
	return markup
}

// Single returns a keyboard holding one button.
func Single(label string) *tele.ReplyMarkup {
	return Rows([]string{label})
}

// Labels flattens a keyboard back into its button texts, row by row.
func Labels(markup *tele.ReplyMarkup) [][]string {
	if markup == nil {
		return nil
	}
	out := make([][]string, 0, len(markup.ReplyKeyboard))
	for _, row := range markup.ReplyKeyboard {
		texts := make([]string, 0, len(row))
		for _, btn := range row {
			texts = append(texts, btn.Text)
		}
		out = append(out, texts)
	}
	return out
}
