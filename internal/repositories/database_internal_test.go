package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type capturingWriter struct {
	lines []string
}

func (w *capturingWriter) Printf(format string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	w := &capturingWriter{}
	l := newGormLogger(w)
	query := func() (string, int64) { return "SELECT * FROM users WHERE email = 'a@x.com'", 0 }

	l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	assert.Empty(t, w.lines)

	l.Trace(context.Background(), time.Now(), query, errors.New("connection reset"))
	if assert.Len(t, w.lines, 1) {
		assert.Contains(t, w.lines[0], "connection reset")
	}
}
