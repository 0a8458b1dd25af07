// Package logger configures the go-logging backend shared by the commands.
package logger

import (
	"io"
	"strings"

	"github.com/op/go-logging"
)

const format = `%{time:15:04:05.000} %{module} %{level:.4s} %{message}`

// Setup routes every module's log output to w at the named level
// ("debug", "info", "warning", "error"...).
func Setup(w io.Writer, level string) error {
	lvl, err := logging.LogLevel(strings.ToUpper(level))
	if err != nil {
		return err
	}
	backend := logging.NewLogBackend(w, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(format))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
	return nil
}
