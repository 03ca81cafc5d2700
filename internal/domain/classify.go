package domain

import "strings"

// InboxMarker — имя корневой папки экспорта, единственного дерева,
// которое имеет значение. Сравнение без учета регистра.
const InboxMarker = "inbox"

// EntryRole — роль записи архива, определенная по форме ее пути.
type EntryRole int

const (
	// RoleIgnored — запись вне inbox-дерева или каталог; пропускается.
	RoleIgnored EntryRole = iota
	// RoleMessageFragment — файл message_*.json с частью переписки.
	RoleMessageFragment
	// RoleMedia — медиафайл из подпапки photos/videos/audio.
	RoleMedia
	// RoleOther — запись внутри inbox, не являющаяся ни фрагментом, ни медиа.
	RoleOther
)

// EntryClass — результат классификации одной записи архива.
type EntryClass struct {
	Role       EntryRole
	ThreadPath string
	FileName   string
	Media      MediaKind
}

// mediaFolders сопоставляет имя медиапапки с типом вложения.
var mediaFolders = map[string]MediaKind{
	"photos": MediaPhoto,
	"videos": MediaVideo,
	"audio":  MediaAudio,
}

// ClassifyPath определяет роль записи архива по сегментам ее пути.
// Правила повторяют раскладку экспорта: inbox/<thread>/message_N.json
// для фрагментов и inbox/<thread>/<photos|videos|audio>/<file> для медиа.
func ClassifyPath(segments []string, isDirectory bool) EntryClass {
	if isDirectory || len(segments) < 2 || !strings.EqualFold(segments[0], InboxMarker) {
		return EntryClass{Role: RoleIgnored}
	}

	class := EntryClass{
		ThreadPath: segments[1],
		FileName:   segments[len(segments)-1],
	}

	// Имена фрагментов чувствительны к регистру, как в исходном экспорте.
	if strings.HasPrefix(class.FileName, "message") && strings.HasSuffix(class.FileName, ".json") {
		class.Role = RoleMessageFragment
		return class
	}

	if len(segments) >= 4 {
		if kind, ok := mediaFolders[strings.ToLower(segments[2])]; ok {
			class.Role = RoleMedia
			class.Media = kind
			return class
		}
	}

	class.Role = RoleOther
	return class
}
