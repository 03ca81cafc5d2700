package parser

import (
	"encoding/json"
	"fmt"

	"instagram-archive-viewer/internal/domain"
	"instagram-archive-viewer/internal/ports"
)

// JSONFragmentParser реализует интерфейс FragmentParser для разбора
// файлов message_*.json и заранее извлеченных наборов документов.
type JSONFragmentParser struct{}

// NewFragmentParser создает новый экземпляр JSONFragmentParser.
func NewFragmentParser() ports.FragmentParser {
	return &JSONFragmentParser{}
}

// Parse преобразует сырые байты одного фрагмента в структуру Fragment
// и проверяет ее структурную корректность. Ошибка разбора и ошибка
// валидации различимы через errors.As с *domain.ValidationError.
func (p *JSONFragmentParser) Parse(data []byte) (*domain.Fragment, error) {
	var fragment domain.Fragment
	if err := json.Unmarshal(data, &fragment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fragment: %w", err)
	}

	if err := domain.ValidateFragment(fragment, false); err != nil {
		return nil, err
	}

	return &fragment, nil
}

// ParseSet разбирает документ с массивом фрагментов-переписок —
// формат загрузки без ZIP-контейнера. Валидация отдельных документов
// остается на вызывающем коде: один битый документ не должен
// обесценить остальные.
func (p *JSONFragmentParser) ParseSet(data []byte) ([]domain.Fragment, error) {
	var fragments []domain.Fragment
	if err := json.Unmarshal(data, &fragments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fragment set: %w", err)
	}
	return fragments, nil
}
