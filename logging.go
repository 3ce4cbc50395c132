package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/echocat/slf4g/native"
	"github.com/echocat/slf4g/native/consumer"
	"github.com/echocat/slf4g/native/facade/value"
	"github.com/echocat/slf4g/native/formatter"

	"github.com/llehouerou/voicetrack/internal/config"
)

// setupLogging routes the native slf4g provider to cfg.File. The terminal
// belongs to the UI.
func setupLogging(cfg config.LogConfig) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	consumer.Default = consumer.NewWriter(f)

	lv := value.NewProvider(native.DefaultProvider)
	lv.Consumer.Formatter.Codec = value.MappingFormatterCodec{
		"text": formatter.NewText(),
		"json": formatter.NewJson(),
	}
	if err := lv.Level.Set(cfg.Level); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := lv.Consumer.Formatter.Set(cfg.Format); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
