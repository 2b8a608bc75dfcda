package editor

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/lixenwraith/statline/terminal"
)

// KeyBindings converts a key name → action name map (the [keys] section of
// the configuration) into bindings to be placed ahead of the defaults.
// Longer sequences are ordered first so a bare escape cannot shadow them.
// Returns error on unknown key or action names.
func KeyBindings(keys map[string]string) ([]Binding, error) {
	type entry struct {
		key, seq, action string
		act              Action
	}
	entries := make([]entry, 0, len(keys))

	for keyName, actionName := range keys {
		seq, ok := terminal.SequenceByName(keyName)
		if !ok {
			return nil, fmt.Errorf("[keys] unknown key name: %q", keyName)
		}
		name := strings.ToLower(strings.TrimSpace(actionName))
		act, ok := ActionByName(name)
		if !ok {
			return nil, fmt.Errorf("[keys] key %q: unknown action: %q", keyName, actionName)
		}
		entries = append(entries, entry{keyName, seq, name, act})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(len(b.seq), len(a.seq)); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	bindings := make([]Binding, len(entries))
	for i, en := range entries {
		bindings[i] = Binding{
			Name:     en.action,
			Matchers: []Matcher{Seq(en.seq)},
			Action:   en.act,
		}
	}
	return bindings, nil
}

// BindingFor returns the name of the binding that would consume the start
// of chunk and how many bytes it takes. Used by diagnostics.
func (e *Editor) BindingFor(chunk []byte) (string, int) {
	if len(chunk) == 0 {
		return "", 0
	}
	if b, n := e.lookup(chunk); b != nil {
		return b.Name, n
	}
	return "", 0
}
