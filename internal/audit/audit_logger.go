package audit

import (
	"encoding/json"
	"log"
	"time"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	EntryID   string    `json:"entry_id,omitempty"`
	AccountID string    `json:"account_id"`
	Delta     int64     `json:"delta,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// Logger emits one JSON audit event per ledger mutation.
type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

func (a *Logger) LogEntry(entryID, accountID, source string, delta int64) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "LEDGER_APPEND",
		EntryID:   entryID,
		AccountID: accountID,
		Delta:     delta,
		Status:    "SUCCESS",
		Details:   map[string]string{"source": source},
	})
}

func (a *Logger) LogOperation(accountID, operation, details string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: operation,
		AccountID: accountID,
		Status:    "SUCCESS",
		Details:   map[string]string{"details": details},
	})
}

func (a *Logger) LogError(accountID, operation string, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: operation,
		AccountID: accountID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
