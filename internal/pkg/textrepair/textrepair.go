// Package textrepair исправляет дважды закодированный текст экспорта:
// JSON выгрузки часто содержит байты UTF-8, ошибочно прочитанные как Latin-1.
package textrepair

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Repair пытается заново интерпретировать строку как UTF-8-байты,
// прочитанные как Latin-1, и возвращает исправленный текст.
// Если строка содержит символы вне Latin-1 или полученные байты
// не образуют корректный UTF-8, вход возвращается без изменений —
// вызывающий код никогда не получает ошибку.
func Repair(text string) string {
	if text == "" {
		return text
	}

	// Каждый символ строки должен помещаться в один байт Latin-1,
	// иначе это не результат ошибочного декодирования.
	raw, err := charmap.ISO8859_1.NewEncoder().String(text)
	if err != nil {
		return text
	}

	if !utf8.ValidString(raw) {
		return text
	}

	return raw
}
