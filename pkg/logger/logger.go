package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr с уровнем по умолчанию, чтобы пакеты
// можно было использовать из тестов без отдельной настройки.
var Log = logrus.New()

// Init инициализирует глобальный логгер.
// Эта функция должна быть вызвана один раз при старте приложения в main.go.
func Init() {
	Log = logrus.New()

	// 1. Уровень логирования из переменной окружения.
	// По умолчанию - "info". Для отладки можно выставить "debug".
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// 2. Форматтер.
	// "json" - для продакшена и сбора логов.
	// "text" - для удобной разработки.
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if logFormat == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// SetOutput перенаправляет вывод (используется CLI для режима --quiet и тестами).
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// For возвращает запись лога с полем component.
func For(component string) *logrus.Entry {
	return Log.WithField("component", component)
}
