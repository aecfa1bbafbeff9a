package messages

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

type MessageText struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Render substitutes {key} placeholders in the title and body.
func (m MessageText) Render(vars map[string]string) MessageText {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	return MessageText{Title: r.Replace(m.Title), Body: r.Replace(m.Body)}
}

type Messages struct {
	RecurringGenerated MessageText `json:"recurring_generated"`
	TransferExecuted   MessageText `json:"transfer_executed"`
}

// Defaults is used when no messages file is configured, and fills any entry
// the file leaves empty.
var Defaults = Messages{
	RecurringGenerated: MessageText{
		Title: "Movimiento recurrente registrado",
		Body:  "{description}: {amount}",
	},
	TransferExecuted: MessageText{
		Title: "Transferencia realizada",
		Body:  "{amount} de {from} a {to}",
	},
}

var (
	loaded   Messages
	loadOnce sync.Once
	loadErr  error
)

// Load reads the notifications JSON file and caches the result.
// An empty path yields Defaults. Safe to call from multiple goroutines.
func Load(path string) (*Messages, error) {
	loadOnce.Do(func() {
		loaded = Defaults
		if path == "" {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read messages file: %w", err)
			return
		}
		var fromFile Messages
		if err := json.Unmarshal(data, &fromFile); err != nil {
			loadErr = fmt.Errorf("failed to parse messages file: %w", err)
			return
		}
		loaded = merge(fromFile, Defaults)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return &loaded, nil
}

func merge(m, defaults Messages) Messages {
	m.RecurringGenerated = m.RecurringGenerated.orDefault(defaults.RecurringGenerated)
	m.TransferExecuted = m.TransferExecuted.orDefault(defaults.TransferExecuted)
	return m
}

func (m MessageText) orDefault(d MessageText) MessageText {
	if m.Title == "" {
		m.Title = d.Title
	}
	if m.Body == "" {
		m.Body = d.Body
	}
	return m
}
