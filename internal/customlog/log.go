// Package customlog provides the colored, leveled logger used across the
// converter core and its CLI front end.
package customlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Type defines the level or category of the log message.
type Type uint8

var (
	Success    Type = 0x00
	Failure    Type = 0x01
	Processing Type = 0x02
	Finished   Type = 0x03
	Info       Type = 0x04
	Warning    Type = 0x05
	// None is for un-styled text, providing a neutral default.
	None Type = 0x06
)

type typeDetails struct {
	symbol string
	color  *color.Color
}

var logTypeMap = map[Type]typeDetails{
	Success:    {symbol: "[+]", color: color.New(color.Bold, color.FgGreen)},
	Failure:    {symbol: "[-]", color: color.New(color.Bold, color.FgRed)},
	Processing: {symbol: "[/]", color: color.New(color.Bold, color.FgBlue)},
	Finished:   {symbol: "[$]", color: color.New(color.BgGreen, color.FgBlack)},
	Info:       {symbol: "[i]", color: color.New(color.Bold, color.FgCyan)},
	Warning:    {symbol: "[!]", color: color.New(color.Bold, color.FgYellow)},
	None:       {symbol: "", color: color.New()},
}

var (
	output io.Writer = os.Stderr
	mu     sync.Mutex
)

// SetOutput redirects log output, e.g. to a file or an in-memory buffer
// captured by a test.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// GetOutput returns the current output writer.
func GetOutput() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Printf prints a formatted, timestamped, colored log line.
func Printf(logType Type, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if f, ok := output.(*os.File); ok {
		stat, _ := f.Stat()
		color.NoColor = (stat.Mode() & os.ModeCharDevice) != os.ModeCharDevice
	} else {
		color.NoColor = false
	}

	t, ok := logTypeMap[logType]
	if !ok {
		t = logTypeMap[None]
	}

	prefix := ""
	if t.symbol != "" {
		prefix = t.symbol + " "
	}
	fullFormat := prefix + time.Now().Format("15:04:05") + " " + format
	t.color.Fprintf(output, fullFormat, v...)
}

// Println writes its arguments followed by a newline, unstyled.
func Println(v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(output, v...)
}
