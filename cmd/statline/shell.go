package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lixenwraith/statline/editor"
)

// display is the part of the screen the shell drives
type display interface {
	Output(text string) error
	SetRow(i int, text string) error
	Redraw() error
	Do(fn func(ed *editor.Editor)) error
}

// shell runs the demo commands and keeps the status rows current
type shell struct {
	scr     display
	rows    int
	started time.Time
	now     func() time.Time

	mu   sync.Mutex
	last string
}

func newShell(scr display, rows int) *shell {
	return &shell{scr: scr, rows: rows, started: time.Now(), now: time.Now}
}

type command struct {
	help string
	run  func(sh *shell, args []string) bool
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":    {"list commands", (*shell).cmdHelp},
		"echo":    {"print the arguments", (*shell).cmdEcho},
		"date":    {"print the date", (*shell).cmdDate},
		"uptime":  {"time since start", (*shell).cmdUptime},
		"history": {"history [n]: show the last n lines", (*shell).cmdHistory},
		"status":  {"status <row> <text>: set a status row", (*shell).cmdStatus},
		"rows":    {"number of status rows", (*shell).cmdRows},
		"clear":   {"repaint the screen", (*shell).cmdClear},
		"exit":    {"leave", func(*shell, []string) bool { return true }},
	}
}

// exec runs one accepted line and reports whether the shell should exit
func (sh *shell) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	sh.mu.Lock()
	sh.last = fields[0]
	sh.mu.Unlock()

	cmd, ok := commands[fields[0]]
	if !ok {
		sh.scr.Output(fmt.Sprintf("unknown command %q, try help", fields[0]))
		return false
	}
	return cmd.run(sh, fields[1:])
}

func (sh *shell) cmdHelp(args []string) bool {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(args) > 0 {
		if c, ok := commands[args[0]]; ok {
			sh.scr.Output(args[0] + ": " + c.help)
			return false
		}
	}
	sh.scr.Output("commands: " + strings.Join(names, " "))
	return false
}

func (sh *shell) cmdEcho(args []string) bool {
	sh.scr.Output(strings.Join(args, " "))
	return false
}

func (sh *shell) cmdDate(args []string) bool {
	sh.scr.Output(sh.now().Format(time.RFC1123))
	return false
}

func (sh *shell) cmdUptime(args []string) bool {
	sh.scr.Output("up " + sh.uptime())
	return false
}

func (sh *shell) uptime() string {
	return sh.now().Sub(sh.started).Truncate(time.Second).String()
}

func (sh *shell) cmdHistory(args []string) bool {
	n := 5
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			sh.scr.Output("history: count must be a positive number")
			return false
		}
		n = v
	}

	// History belongs to the event loop
	sh.scr.Do(func(ed *editor.Editor) {
		h := ed.History()
		var parts []string
		for i := max(1, h.Len()-n+1); i <= h.Len(); i++ {
			parts = append(parts, fmt.Sprintf("%d:%s", i, h.At(i)))
		}
		if len(parts) == 0 {
			sh.scr.Output("history is empty")
			return
		}
		sh.scr.Output(strings.Join(parts, "  "))
	})
	return false
}

func (sh *shell) cmdStatus(args []string) bool {
	if len(args) == 0 {
		sh.scr.Output("usage: status <row> <text>")
		return false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > sh.rows {
		sh.scr.Output(fmt.Sprintf("status: row must be within 1..%d", sh.rows))
		return false
	}
	sh.scr.SetRow(i, strings.Join(args[1:], " "))
	return false
}

func (sh *shell) cmdRows(args []string) bool {
	sh.scr.Output(fmt.Sprintf("%d status rows", sh.rows))
	return false
}

func (sh *shell) cmdClear(args []string) bool {
	sh.scr.Redraw()
	return false
}

// refresh repaints the clock row and the history row
func (sh *shell) refresh() {
	if sh.rows >= 1 {
		sh.scr.SetRow(1, fmt.Sprintf("%s  up %s", sh.now().Format("15:04:05"), sh.uptime()))
	}
	if sh.rows >= 2 {
		sh.mu.Lock()
		last := sh.last
		sh.mu.Unlock()
		sh.scr.Do(func(ed *editor.Editor) {
			sh.scr.SetRow(2, fmt.Sprintf("history %d  last %q", ed.History().Len(), last))
		})
	}
}
