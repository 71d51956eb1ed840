package cache

import (
	_ "embed"
	"fmt"
	"taskBoard/internal/models/contact"
	"taskBoard/internal/models/task"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

type demoData struct {
	Tasks    []task.Task       `yaml:"tasks"`
	Contacts []contact.Contact `yaml:"contacts"`
}

// Demo разбирает встроенный набор данных гостевого режима.
// Каждый вызов возвращает свежие копии.
func Demo() ([]task.Task, []contact.Contact, error) {
	var d demoData
	if err := yaml.Unmarshal(demoYAML, &d); err != nil {
		return nil, nil, fmt.Errorf("разбор демо-данных: %w", err)
	}
	for i := range d.Contacts {
		if d.Contacts[i].Initials == "" {
			d.Contacts[i].Initials = contact.Initials(d.Contacts[i].Name)
		}
	}
	return d.Tasks, d.Contacts, nil
}
