// Command statline is a small interactive shell drawn as a row block: status
// rows that refresh on their own, an output row and an edit line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/lixenwraith/statline/audio"
	"github.com/lixenwraith/statline/config"
	"github.com/lixenwraith/statline/editor"
	"github.com/lixenwraith/statline/history"
	"github.com/lixenwraith/statline/screen"
	"github.com/lixenwraith/statline/terminal"
)

var (
	configFlag      = flag.String("config", "", "config file (default "+config.DefaultPath()+")")
	rowsFlag        = flag.Int("rows", -1, "number of status rows, overrides the config")
	debugFlag       = flag.Bool("debug", false, "write logs/statline.log")
	printConfigFlag = flag.Bool("print-config", false, "print the effective configuration and exit")
)

func main() {
	// Leave the terminal usable whatever happens
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mSTATLINE CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "statline: %v\n", err)
		os.Exit(1)
	}
	if *rowsFlag >= 0 {
		cfg.Screen.Rows = *rowsFlag
	}
	if *debugFlag {
		cfg.Log.Debug = true
	}

	if *printConfigFlag {
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "statline: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	if logFile := setupLogging(cfg.Log.Debug, cfg.Log.Dir, cfg.Log.MaxSize); logFile != nil {
		defer logFile.Close()
	}

	if err := run(cfg); err != nil {
		log.Printf("statline: %v", err)
		fmt.Fprintf(os.Stderr, "statline: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	backend, err := openBackend(cfg.Terminal.Backend)
	if err != nil {
		return err
	}
	stream := terminal.NewStream(backend, cfg.Terminal.HighWater)
	defer stream.Close()

	hist, err := history.Open(cfg.History.Backend, cfg.HistoryPath(), cfg.History.Limit)
	if err != nil {
		return err
	}
	defer hist.Close()

	keys, err := editor.KeyBindings(cfg.Keys)
	if err != nil {
		return err
	}

	bell, closeBell := newBell(cfg)
	defer closeBell()

	scr, err := screen.New(stream, screen.Options{
		Rows: cfg.Screen.Rows,
		Top:  cfg.Screen.Top,
		Bell: bell,
		Editor: editor.Options{
			Prompt:      cfg.Editor.Prompt,
			WordPattern: cfg.Editor.WordPattern,
			History:     hist,
			Completer:   editor.PrefixCompleter(cfg.Editor.Words),
			Bindings:    keys,
			Columns:     cfg.Editor.Columns,
		},
	})
	if err != nil {
		return err
	}
	scr.Start()
	defer scr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	sh := newShell(scr, cfg.Screen.Rows)
	sh.refresh()
	go func() {
		ticker := time.NewTicker(cfg.Screen.Refresh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sh.refresh()
			case <-ctx.Done():
				return
			}
		}
	}()

	scr.Output("type help for commands, ctrl-d to quit")
	for {
		line, err := scr.ReadLine(ctx)
		switch {
		case errors.Is(err, editor.ErrEOF), errors.Is(err, editor.ErrInterrupted), errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, editor.ErrKeyPanic):
			// The editor survives a bad key; report it and keep reading
			log.Printf("statline: %v", err)
			scr.Output(err.Error())
			continue
		case err != nil:
			return err
		}
		if sh.exec(line) {
			return nil
		}
	}
}

// openBackend picks the configured backend, using /dev/tty when stdin is
// not a terminal
func openBackend(name string) (terminal.Backend, error) {
	if name == config.BackendTTY || !term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := terminal.NewTTYBackend()
		if err != nil {
			return nil, fmt.Errorf("open /dev/tty: %w", err)
		}
		return b, nil
	}
	return terminal.NewUnixBackend(os.Stdin, os.Stdout), nil
}

// newBell returns the screen's bell for the configured mode; nil keeps the
// terminal BEL byte
func newBell(cfg *config.Config) (func(), func()) {
	switch cfg.Terminal.Bell {
	case config.BellNone:
		return func() {}, func() {}
	case config.BellAudio:
		b := audio.NewBell(audio.Options{
			Volume:     cfg.Audio.Volume,
			Frequency:  cfg.Audio.Frequency,
			Length:     cfg.Audio.Length,
			SampleRate: cfg.Audio.SampleRate,
		})
		if err := b.Init(); err != nil {
			// Non-fatal, fall back to the terminal bell
			log.Printf("statline: %v", err)
			return nil, func() {}
		}
		return b.Ring, b.Close
	}
	return nil, func() {}
}
