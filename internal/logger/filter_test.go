package logger

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseFilter(t *testing.T) {
	assert.Nil(t, parseFilter(""))
	assert.Nil(t, parseFilter("*"))
	assert.Nil(t, parseFilter("invite,*"))
	assert.Equal(t, map[string]bool{"invite": true, "collection": true}, parseFilter(" Invite , collection,"))
}

func TestFilterHook_MarksEntries(t *testing.T) {
	hook := NewFilterHook(&LogConfig{FilterModules: "invite", FilterLogTypes: "info,warning"})

	entry := func(level logrus.Level, data logrus.Fields) *logrus.Entry {
		e := logrus.NewEntry(logrus.New())
		e.Level = level
		for k, v := range data {
			e.Data[k] = v
		}
		return e
	}

	kept := entry(logrus.InfoLevel, logrus.Fields{"module": "Invite"})
	assert.NoError(t, hook.Fire(kept))
	assert.NotContains(t, kept.Data, filteredKey)

	noModule := entry(logrus.WarnLevel, nil)
	assert.NoError(t, hook.Fire(noModule))
	assert.NotContains(t, noModule.Data, filteredKey)

	otherModule := entry(logrus.InfoLevel, logrus.Fields{"module": "collection"})
	assert.NoError(t, hook.Fire(otherModule))
	assert.Equal(t, true, otherModule.Data[filteredKey])

	debugLevel := entry(logrus.DebugLevel, logrus.Fields{"module": "invite"})
	assert.NoError(t, hook.Fire(debugLevel))
	assert.Equal(t, true, debugLevel.Data[filteredKey])
}

func TestAsyncHook_SkipsFilteredAndFlushesOnClose(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	hook := NewAsyncHookWithWriters([]io.Writer{&buf}, 10)

	visible := logrus.NewEntry(log)
	visible.Level = logrus.InfoLevel
	visible.Message = "visible"
	visible.Time = time.Now()
	assert.NoError(t, hook.Fire(visible))

	hidden := logrus.NewEntry(log)
	hidden.Level = logrus.InfoLevel
	hidden.Message = "hidden"
	hidden.Data[filteredKey] = true
	assert.NoError(t, hook.Fire(hidden))

	assert.NoError(t, hook.Close())
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), "hidden")
}
