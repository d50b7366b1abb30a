package customlog

import (
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Type uint8

var (
	Success    Type = 0x00
	Failure    Type = 0x01
	Processing Type = 0x02
	Warning    Type = 0x03
	Info       Type = 0x04
	Finished   Type = 0x05
)

type TypesDetails struct {
	symbol string
	color  *color.Color
}

var logTypeMap = map[Type]TypesDetails{
	Success:    {symbol: "[+]", color: color.New(color.Bold, color.FgGreen)},
	Failure:    {symbol: "[-]", color: color.New(color.Bold, color.FgRed)},
	Processing: {symbol: "[/]", color: color.New(color.Bold, color.FgBlue)},
	Warning:    {symbol: "[!]", color: color.New(color.Bold, color.FgYellow)},
	Info:       {symbol: "[i]", color: color.New(color.Bold, color.FgCyan)},
	Finished:   {symbol: "[*]", color: color.New(color.Bold, color.FgMagenta)},
}

var (
	mu     sync.Mutex
	output io.Writer = color.Output
)

// SetOutput redirects every log line, e.g. to color.Error when stdout carries data.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func Printf(logType Type, format string, v ...interface{}) {
	t := logTypeMap[logType]
	currentTime := time.Now()

	mu.Lock()
	defer mu.Unlock()
	t.color.Fprintf(output, t.symbol+" "+currentTime.Format("2006-01-02 15:04:05")+" "+format, v...)
}

// GetColor paints s with the color of logType.
func GetColor(logType Type, s string) string {
	return logTypeMap[logType].color.Sprint(s)
}
