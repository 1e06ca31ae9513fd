package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/rs/zerolog/log"
	"github.com/skratchdot/open-golang/open"

	"github.com/circleous/cistatus/internal/config"
)

const urlPlaceholder = "{url}"

// Launcher opens urls with a configured command or the OS default browser
type Launcher struct {
	// template is the command for this OS, empty means the default browser
	template string

	start       func(name string, args ...string) error
	openDefault func(url string) error
}

// New picks the command template of the configured browser for the current
// OS. A browser without a template for this OS falls back to the default.
func New(conf *config.Config) *Launcher {
	return newLauncher(conf, runtime.GOOS)
}

func newLauncher(conf *config.Config, goos string) *Launcher {
	l := &Launcher{
		start:       startCommand,
		openDefault: open.Start,
	}

	if conf.Browser == config.DefaultBrowser {
		return l
	}

	tmpl, ok := conf.Browsers[conf.Browser][goos]
	if !ok || strings.TrimSpace(tmpl) == "" {
		log.Debug().Str("browser", conf.Browser).Str("os", goos).
			Msg("no browser command for this os, using the default browser")
		return l
	}
	l.template = tmpl

	return l
}

// Open implements status.Opener
func (l *Launcher) Open(url string) error {
	if l.template == "" {
		return l.openDefault(url)
	}

	args, err := Expand(l.template, url)
	if err != nil {
		return err
	}

	log.Debug().Strs("command", args).Msg("opening browser")
	return l.start(args[0], args[1:]...)
}

// Expand splits template into shell words and substitutes url for "{url}".
// Quotes group words and backslashes are literal, so quoted Windows paths
// work. The url is appended when the template has no placeholder.
func Expand(template, url string) ([]string, error) {
	fields, err := shellwords.Parse(literalBackslashes(template))
	if err != nil {
		return nil, fmt.Errorf("parse browser command %q: %w", template, err)
	}
	if len(fields) == 0 {
		return nil, errors.New("empty browser command")
	}

	replaced := false
	for i, f := range fields {
		if strings.Contains(f, urlPlaceholder) {
			fields[i] = strings.ReplaceAll(f, urlPlaceholder, url)
			replaced = true
		}
	}
	if !replaced {
		fields = append(fields, url)
	}

	return fields, nil
}

// literalBackslashes doubles every backslash the shell word parser would
// otherwise read as an escape. Single-quoted text is left alone since the
// parser keeps it verbatim.
func literalBackslashes(s string) string {
	var b strings.Builder
	single, double := false, false
	for _, r := range s {
		switch {
		case r == '\'' && !double:
			single = !single
		case r == '"' && !single:
			double = !double
		case r == '\\' && !single:
			b.WriteRune(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func startCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// don't wait for the browser, just reap it
	go func() { _ = cmd.Wait() }()
	return nil
}
