// Command keytest prints what the terminal sends for each key press, the
// key's name as used in the [keys] config section and the editor binding
// it would trigger. Press ctrl-c or q to quit.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/lixenwraith/statline/config"
	"github.com/lixenwraith/statline/editor"
	"github.com/lixenwraith/statline/terminal"
)

type nopSink struct{}

func (nopSink) Write(string)        {}
func (nopSink) Output(string, bool) {}
func (nopSink) Bell()               {}
func (nopSink) Redraw()             {}
func (nopSink) Columns() int        { return terminal.DefaultColumns }

type chunk struct {
	data []byte
	err  error
}

func main() {
	configPath := flag.String("config", "", "config file whose [keys] are applied")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keytest: %v\n", err)
		os.Exit(1)
	}
	keys, err := editor.KeyBindings(cfg.Keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keytest: %v\n", err)
		os.Exit(1)
	}
	ed, err := editor.New(1, nopSink{}, editor.Options{Bindings: keys, WordPattern: cfg.Editor.WordPattern})
	if err != nil {
		fmt.Fprintf(os.Stderr, "keytest: %v\n", err)
		os.Exit(1)
	}

	var backend terminal.Backend
	if term.IsTerminal(int(os.Stdin.Fd())) {
		backend = terminal.NewUnixBackend(os.Stdin, os.Stdout)
	} else if backend, err = terminal.NewTTYBackend(); err != nil {
		fmt.Fprintf(os.Stderr, "keytest: open /dev/tty: %v\n", err)
		os.Exit(1)
	}
	stream := terminal.NewStream(backend, terminal.DefaultHighWater)
	defer stream.Close()

	if err := stream.SetRawMode(true); err != nil {
		fmt.Fprintf(os.Stderr, "keytest: %v\n", err)
		os.Exit(1)
	}
	defer stream.SetRawMode(false)

	chunks := make(chan chunk, 16)
	stream.StartReading(func(data []byte, err error) {
		chunks <- chunk{append([]byte(nil), data...), err}
	})
	defer stream.StopReading()

	stream.Write("Press keys to see their names and bindings, ctrl-c or q to quit\r\n", nil)
	for c := range chunks {
		if c.err != nil {
			stream.Write(fmt.Sprintf("read error: %v\r\n", c.err), nil)
			return
		}
		for _, line := range describe(ed, c.data) {
			stream.Write(line+"\r\n", nil)
		}
		if s := string(c.data); s == "\x03" || s == "q" {
			return
		}
	}
}

// describe splits a chunk into keys and names each one
func describe(ed *editor.Editor, data []byte) []string {
	var lines []string
	for len(data) > 0 {
		action, n := ed.BindingFor(data)
		if k := terminal.KeyLength(data); n == 0 || action == "insert" && n > k {
			n = k
		}
		if n <= 0 {
			n = 1
		}
		key := string(data[:n])
		if action == "" {
			action = "-"
		}
		lines = append(lines, fmt.Sprintf("%-24s %-14s %s", strings.Trim(fmt.Sprintf("% x", key), " "), terminal.NameOf(key), action))
		data = data[n:]
	}
	return lines
}
