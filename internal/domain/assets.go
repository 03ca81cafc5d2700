package domain

// ScannedAsset связывает извлеченный медиафайл с именем файла
// и папкой переписки, из которой он был прочитан.
type ScannedAsset struct {
	FileName   string
	ThreadPath string
	Asset      MediaAsset
	// Resolved выставляется при первом разрешении ссылки на этот файл.
	Resolved bool
}

// AssetMap — карта медиафайлов одного вызова инжеста, ключом служит
// голое имя файла (последний сегмент пути записи). Коллизии имен между
// переписками разрешаются в пользу последнего сканирования; это
// принятое ограничение исходного формата.
type AssetMap struct {
	byName map[string]*ScannedAsset
	order  []*ScannedAsset
}

// NewAssetMap создает пустую карту медиафайлов.
func NewAssetMap() *AssetMap {
	return &AssetMap{byName: make(map[string]*ScannedAsset)}
}

// Put сохраняет медиафайл под его именем. Повторное имя замещает
// предыдущий файл, сохраняя позицию в порядке сканирования.
func (m *AssetMap) Put(fileName, threadPath string, asset MediaAsset) {
	if existing, ok := m.byName[fileName]; ok {
		existing.ThreadPath = threadPath
		existing.Asset = asset
		existing.Resolved = false
		return
	}

	scanned := &ScannedAsset{FileName: fileName, ThreadPath: threadPath, Asset: asset}
	m.byName[fileName] = scanned
	m.order = append(m.order, scanned)
}

// Get возвращает медиафайл по имени.
func (m *AssetMap) Get(fileName string) (*ScannedAsset, bool) {
	a, ok := m.byName[fileName]
	return a, ok
}

// Len возвращает количество уникальных имен файлов в карте.
func (m *AssetMap) Len() int {
	return len(m.order)
}

// Unreferenced возвращает медиафайлы, на которые не сослалось ни одно
// сообщение, в порядке сканирования.
func (m *AssetMap) Unreferenced() []*ScannedAsset {
	var unused []*ScannedAsset
	for _, a := range m.order {
		if !a.Resolved {
			unused = append(unused, a)
		}
	}
	return unused
}
