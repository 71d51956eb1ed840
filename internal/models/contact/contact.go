package contact

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Contact struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Color    string `json:"color" yaml:"color"`
	Initials string `json:"initials,omitempty" yaml:"initials,omitempty"`
}

// User - зарегистрированный пользователь из коллекции users
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// телефон-заглушка у контактов, созданных из профилей пользователей
const ProfilePhone = "User Profile"

const MigratedColor = "#9327FF"
const RegisteredColor = "#29ABE2"

// Palette - цвета значков для новых контактов
var Palette = []string{
	"#FF7A00", "#FF5EB3", "#6E52FF", "#9327FF", "#00BEE8",
	"#1FD7C1", "#FF745E", "#FFA35E", "#FC71FF", "#FFC701",
	"#0038FF", "#C3FF2B", "#FFE62B", "#FF4646", "#FFBB2B",
}

// Initials берёт первую букву первого и последнего слова имени
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	first := firstRune(words[0])
	if len(words) == 1 {
		return strings.ToUpper(first)
	}
	return strings.ToUpper(first + firstRune(words[len(words)-1]))
}

func firstRune(word string) string {
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(r)
		}
	}
	r, _ := utf8.DecodeRuneInString(word)
	return string(r)
}

// FromUser синтезирует контакт для пользователя без записи в контактах
func FromUser(id int64, u User, color string) Contact {
	return Contact{
		ID:       id,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    ProfilePhone,
		Color:    color,
		Initials: Initials(u.Name),
	}
}

// Public возвращает пользователя без пароля
func (u User) Public() User {
	u.Password = ""
	return u
}
