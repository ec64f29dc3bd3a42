package logger

import (
	"fmt"
	"log"
	"os"
)

const (
	LogError   = "ERROR"
	LogInfo    = "INFO"
	LogWarning = "WARN"
)

var logger = log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lshortfile)

func LogMsg(level string, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	logger.Printf("[%s] %s", level, msg)
}

func Info(format string, v ...interface{})  { LogMsg(LogInfo, format, v...) }
func Warn(format string, v ...interface{})  { LogMsg(LogWarning, format, v...) }
func Error(format string, v ...interface{}) { LogMsg(LogError, format, v...) }
