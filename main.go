package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/echocat/slf4g"

	"github.com/llehouerou/voicetrack/internal/config"
	"github.com/llehouerou/voicetrack/internal/engine"
	"github.com/llehouerou/voicetrack/internal/errmsg"
	"github.com/llehouerou/voicetrack/internal/mainloop"
	"github.com/llehouerou/voicetrack/internal/tracker"
	"github.com/llehouerou/voicetrack/internal/ui/timeline"
)

// Spacing between the send times of seeded messages.
const seedInterval = 17 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	logFile, err := setupLogging(cfg.GetLogConfig())
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLogSetup, err))
	}
	defer logFile.Close()

	demo := cfg.GetDemoConfig()
	log.With("messages", demo.Messages).
		With("tick", demo.Tick()).
		With("failEvery", demo.FailEvery).
		Info("Starting.")

	loop := mainloop.New()
	defer loop.Close()

	tr := tracker.New(loop)
	eng := engine.New(tr, engine.Options{
		Tick:      demo.Tick(),
		FailEvery: demo.FailEvery,
	})
	defer eng.Close()
	seedMessages(eng, demo, time.Now())

	p := tea.NewProgram(timeline.New(tr, eng, time.Now), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}

	log.Info("Bye.")
	return nil
}

func seedMessages(eng *engine.Engine, demo config.DemoConfig, now time.Time) {
	for i := range demo.Messages {
		sentAt := now.Add(-time.Duration(demo.Messages-i) * seedInterval)
		eng.AddMessage(fmt.Sprintf("Voice message %d", i+1), demo.MessageLength(), sentAt)
	}
}
