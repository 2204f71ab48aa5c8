package logger

import (
	"context"
	"fmt"
	"time"

	"vowops/internal/config"
	"vowops/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level         zapcore.Level
	Message       string
	CorrelationId string
	FormId        string
	Caller        string // Function name
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	db      *mongo.Database
	logChan chan LogEntry
	appId   string
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		db:      mongodb.DB,
		logChan: make(chan LogEntry, 1000), // Buffer 1000 logs
		appId:   cfg.AppId,
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop rather than block the request path
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

type logRecord struct {
	AppId         string    `bson:"appId"`
	Message       string    `bson:"message"`
	CorrelationId string    `bson:"correlationId,omitempty"`
	FormId        string    `bson:"formId,omitempty"`
	Caller        string    `bson:"caller,omitempty"`
	LogLevelId    int       `bson:"logLevelId"`
	CreatedOnUtc  time.Time `bson:"createdOnUtc"`
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		record := logRecord{
			AppId:         w.appId,
			Message:       entry.Message,
			CorrelationId: entry.CorrelationId,
			FormId:        entry.FormId,
			Caller:        entry.Caller,
			LogLevelId:    mapLevelToInt(entry.Level),
			CreatedOnUtc:  time.Now().UTC(),
		}

		// Insert into DB (safely ignore errors to keep app running)
		w.db.Collection("logs").InsertOne(context.Background(), record)
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
