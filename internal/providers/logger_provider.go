package providers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lockedloop/tempus-fugit/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeStore
	TypeTick
	TypeApi
)

func (t TypeEnum) String() string {
	switch t {
	case TypeStore:
		return "store"
	case TypeTick:
		return "tick"
	case TypeApi:
		return "api"
	default:
		return "app"
	}
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider writes one log file per stream (app, store, tick, api) under
// the configured directory.
type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	p := &LogProvider{
		loggers: make(map[TypeEnum]zerolog.Logger),
	}

	for _, t := range []TypeEnum{TypeApp, TypeStore, TypeTick, TypeApi} {
		path := filepath.Join(conf.Logger.Dir, t.String()+".log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			p.Close()
			return nil, err
		}
		p.files = append(p.files, file)

		var w io.Writer = file
		if conf.Debug {
			w = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr})
		}
		p.loggers[t] = zerolog.New(w).Level(level).With().Timestamp().Str("stream", t.String()).Logger()
	}

	return p, nil
}

func (p *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l := p.loggers[t]
	l.Error().Msgf(format, args...)
}

func (p *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l := p.loggers[t]
	l.Warn().Msgf(format, args...)
}

func (p *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l := p.loggers[t]
	l.Debug().Msgf(format, args...)
}

func (p *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l := p.loggers[t]
	l.Info().Msgf(format, args...)
}

func (p *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l := p.loggers[t]
	l.Fatal().Msgf(format, args...)
}

func (p *LogProvider) Close() {
	for _, f := range p.files {
		_ = f.Close()
	}
}
